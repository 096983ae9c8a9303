package models

import (
	"strings"
	"time"
)

// PetType classifies the animal or item a product represents
type PetType string

const (
	PetTypeDog   PetType = "DOG"
	PetTypeCat   PetType = "CAT"
	PetTypeBird  PetType = "BIRD"
	PetTypeFish  PetType = "FISH"
	PetTypeOther PetType = "OTHER"
)

var PetTypes = []PetType{PetTypeDog, PetTypeCat, PetTypeBird, PetTypeFish, PetTypeOther}

// ParsePetType accepts any casing of a known pet type
func ParsePetType(s string) (PetType, bool) {
	candidate := PetType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range PetTypes {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

// Product status values the system acts on. Admins may store any other value.
const (
	ProductStatusAvailable = "AVAILABLE"
	ProductStatusAdopted   = "ADOPTED"
)

// Product represents a pet (or pet supply) in the catalog, keyed by its code
type Product struct {
	Code        string    `json:"code" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Type        PetType   `json:"type" bson:"type"`
	Breed       string    `json:"breed" bson:"breed"`
	Age         string    `json:"age" bson:"age"`
	Gender      string    `json:"gender" bson:"gender"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Status      string    `json:"status" bson:"status"`
	CreateDate  time.Time `json:"createDate" bson:"create_date"`
	ImagePath   *string   `json:"imagePath,omitempty" bson:"image_path,omitempty"`
}

// Info snapshots the display fields carried by a cart line
func (p *Product) Info() ProductInfo {
	return ProductInfo{
		Code:      p.Code,
		Name:      p.Name,
		Type:      p.Type,
		Breed:     p.Breed,
		Price:     p.Price,
		ImagePath: p.ImagePath,
	}
}

func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusAvailable
}

func (p *Product) SetCreateDate() {
	if p.CreateDate.IsZero() {
		p.CreateDate = time.Now()
	}
}

// UpsertProductRequest is the admin payload for creating or editing a product.
// The code comes from the URL and never from the body.
type UpsertProductRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Type        string  `json:"type" binding:"required"`
	Breed       string  `json:"breed" binding:"max=100"`
	Age         string  `json:"age" binding:"max=50"`
	Gender      string  `json:"gender" binding:"max=20"`
	Description string  `json:"description" binding:"max=1000"`
	Price       float64 `json:"price" binding:"gte=0"`
	Status      string  `json:"status" binding:"max=50"`
	ImagePath   *string `json:"imagePath"`
}

func (req *UpsertProductRequest) ToProduct(code string, petType PetType) *Product {
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = ProductStatusAvailable
	}
	return &Product{
		Code:        code,
		Name:        req.Name,
		Type:        petType,
		Breed:       req.Breed,
		Age:         req.Age,
		Gender:      req.Gender,
		Description: req.Description,
		Price:       req.Price,
		Status:      status,
		ImagePath:   req.ImagePath,
	}
}

// ProductQuery pages through the catalog, newest first
type ProductQuery struct {
	Page       int
	Size       int
	SearchTerm string
}

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

func (q *ProductQuery) Normalize() {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size < 1 || q.Size > MaxPageSize {
		q.Size = DefaultPageSize
	}
	q.SearchTerm = strings.TrimSpace(q.SearchTerm)
}

type ProductPage struct {
	Items       []Product `json:"items"`
	CurrentPage int       `json:"currentPage"`
	TotalItems  int64     `json:"totalItems"`
	TotalPages  int       `json:"totalPages"`
}

func NewProductPage(items []Product, q ProductQuery, total int64) *ProductPage {
	if items == nil {
		items = []Product{}
	}
	pages := 0
	if q.Size > 0 {
		pages = int((total + int64(q.Size) - 1) / int64(q.Size))
	}
	return &ProductPage{
		Items:       items,
		CurrentPage: q.Page,
		TotalItems:  total,
		TotalPages:  pages,
	}
}
