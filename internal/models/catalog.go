package models

// Author writes books.
type Author struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Books []Book `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"books"`
}

// Book belongs to exactly one author and is removed with it.
type Book struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Title           string `gorm:"size:200;not null;index" json:"title"`
	PublicationYear int    `gorm:"not null;index" json:"publication_year"`
	AuthorID        uint   `gorm:"not null;index" json:"author"`
}
