package domain

import "time"

type Product struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Slug        string    `bson:"slug" json:"slug"`
	Description string    `bson:"description" json:"description"`
	Price       Money     `bson:"price" json:"price"`
	Currency    string    `bson:"currency" json:"currency"`
	ImageURL    string    `bson:"image_url" json:"image_url"`
	CategoryID  string    `bson:"category_id" json:"category_id"`
	InStock     bool      `bson:"in_stock" json:"in_stock"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

type Category struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Slug        string `bson:"slug" json:"slug"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}
