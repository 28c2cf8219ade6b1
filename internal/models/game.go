package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Game struct {
	ID          uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string     `gorm:"not null;index"              json:"title"`
	Description string     `gorm:"type:text"                   json:"description"`
	Price       float64    `gorm:"not null"                    json:"price"`
	CoverImage  string     `                                   json:"coverImage"`
	Genre       string     `gorm:"index"                       json:"genre"`
	Platform    []string   `gorm:"type:text;serializer:json"   json:"platform"`
	Developer   string     `                                   json:"developer"`
	Publisher   string     `                                   json:"publisher"`
	ReleaseDate *time.Time `                                   json:"releaseDate,omitempty"`
	Rating      float64    `                                   json:"rating"`
	InStock     bool       `                                   json:"inStock"`
	CreatedAt   time.Time  `                                   json:"createdAt"`
	UpdatedAt   time.Time  `                                   json:"updatedAt"`
}

func (g *Game) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Platform == nil {
		g.Platform = []string{}
	}
	return nil
}

func (g *Game) HasPlatform(p string) bool {
	for _, v := range g.Platform {
		if v == p {
			return true
		}
	}
	return false
}

// GamePatch carries the fields of a partial update; nil means unchanged.
type GamePatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price"`
	CoverImage  *string    `json:"coverImage"`
	Genre       *string    `json:"genre"`
	Platform    *[]string  `json:"platform"`
	Developer   *string    `json:"developer"`
	Publisher   *string    `json:"publisher"`
	ReleaseDate *time.Time `json:"releaseDate"`
	Rating      *float64   `json:"rating"`
	InStock     *bool      `json:"inStock"`
}

func (p GamePatch) Apply(g *Game) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Price != nil {
		g.Price = *p.Price
	}
	if p.CoverImage != nil {
		g.CoverImage = *p.CoverImage
	}
	if p.Genre != nil {
		g.Genre = *p.Genre
	}
	if p.Platform != nil {
		g.Platform = append([]string{}, (*p.Platform)...)
	}
	if p.Developer != nil {
		g.Developer = *p.Developer
	}
	if p.Publisher != nil {
		g.Publisher = *p.Publisher
	}
	if p.ReleaseDate != nil {
		d := *p.ReleaseDate
		g.ReleaseDate = &d
	}
	if p.Rating != nil {
		g.Rating = *p.Rating
	}
	if p.InStock != nil {
		g.InStock = *p.InStock
	}
}
