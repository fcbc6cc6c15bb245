package models

// Library holds many books; a book may sit in many libraries.
type Library struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Books     []Book     `gorm:"many2many:library_books;constraint:OnDelete:CASCADE" json:"books"`
	Librarian *Librarian `gorm:"foreignKey:LibraryID;constraint:OnDelete:CASCADE" json:"librarian,omitempty"`
}

// Librarian runs exactly one library.
type Librarian struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	LibraryID uint   `gorm:"uniqueIndex;not null" json:"library_id"`
}
