// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db      *gorm.DB
	opts    Options
	rnd     *rand.Rand
	hash    string
	likes   repository.LikeRepository
	follows repository.FollowRepository
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{
		db:      db,
		opts:    opts,
		rnd:     rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		likes:   repository.NewLikeRepository(db, nil),
		follows: repository.NewFollowRepository(db, nil),
		nextID:  1000,
	}
}

func (f *Factory) passwordHash() string {
	if f.hash != "" {
		return f.hash
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	f.hash = string(hashed)
	return f.hash
}

func (f *Factory) create(kind string, v any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		return nil
	}
	if err := f.db.Omit(clause.Associations).Create(v).Error; err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

// CreateUser persists a member with a fake profile.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := strings.ToLower(gofakeit.Username()) + fmt.Sprint(gofakeit.Number(100, 999))
	user := &models.User{
		Username:       username,
		Email:          username + "@example.com",
		Password:       f.passwordHash(),
		Bio:            gofakeit.Sentence(10),
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Role:           models.RoleMember,
	}
	for _, override := range overrides {
		override(user)
	}
	return user, f.create("user", user, &user.ID)
}

// BuildPost constructs a post by author without persisting it. Publication
// dates are spread over the last MaxDays days.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rnd.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute

	post := &models.Post{
		Title:         strings.TrimSuffix(gofakeit.Sentence(5), "."),
		Content:       gofakeit.Paragraph(1, 3, 8, "\n"),
		UserID:        author.ID,
		PublishedDate: time.Now().Add(-back),
	}
	if f.rnd.Float32() < 0.4 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost persists a post by author tagged with tags.
func (f *Factory) CreatePost(author *models.User, tags []models.Tag, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.create("post", post, &post.ID); err != nil {
		return nil, err
	}
	post.Tags = tags
	if f.opts.DryRun || len(tags) == 0 {
		return post, nil
	}
	if err := f.db.Model(post).Association("Tags").Append(tags); err != nil {
		return nil, fmt.Errorf("tag post %d: %w", post.ID, err)
	}
	return post, nil
}

// CreateTags persists the named tags, reusing those that exist.
func (f *Factory) CreateTags(names ...string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag := models.Tag{Name: name, Slug: validation.Slugify(name)}
		if f.opts.DryRun {
			f.nextID++
			tag.ID = f.nextID
		} else if err := f.db.Where(models.Tag{Slug: tag.Slug}).FirstOrCreate(&tag).Error; err != nil {
			return nil, fmt.Errorf("create tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// CreateComment persists a short comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	return comment, f.create("comment", comment, &comment.ID)
}

// CreateLike records a like through the like repository, which also stores
// the notification for the post author. Repeated likes are ignored.
func (f *Factory) CreateLike(ctx context.Context, user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	_, err := f.likes.Like(ctx, user.ID, post.ID)
	if errors.Is(err, models.ErrDuplicateLike) {
		return nil
	}
	return err
}

// CreateFollow makes follower follow following. Self-follows are skipped.
func (f *Factory) CreateFollow(ctx context.Context, follower, following *models.User) error {
	if f.opts.DryRun || follower.ID == following.ID {
		return nil
	}
	_, err := f.follows.Follow(ctx, follower.ID, following.ID)
	return err
}

// CreateAuthor persists an author with a fake name.
func (f *Factory) CreateAuthor() (*models.Author, error) {
	author := &models.Author{Name: gofakeit.Name()}
	return author, f.create("author", author, &author.ID)
}

// CreateBook persists a book by author published between 1850 and this year.
func (f *Factory) CreateBook(author *models.Author) (*models.Book, error) {
	now := time.Now().Year()
	book := &models.Book{
		Title:           gofakeit.BookTitle(),
		PublicationYear: 1850 + f.rnd.Intn(now-1850+1),
		AuthorID:        author.ID,
	}
	return book, f.create("book", book, &book.ID)
}

// CreateLibrary persists a library holding books, staffed by a librarian.
func (f *Factory) CreateLibrary(books []models.Book) (*models.Library, error) {
	library := &models.Library{Name: gofakeit.City() + " Library"}
	if err := f.create("library", library, &library.ID); err != nil {
		return nil, err
	}
	library.Books = books
	if f.opts.DryRun {
		return library, nil
	}
	if len(books) > 0 {
		if err := f.db.Model(library).Omit("Books.*").Association("Books").Append(books); err != nil {
			return nil, fmt.Errorf("stock library %d: %w", library.ID, err)
		}
	}
	librarian := &models.Librarian{Name: gofakeit.Name(), LibraryID: library.ID}
	if err := f.db.Create(librarian).Error; err != nil {
		return nil, fmt.Errorf("staff library %d: %w", library.ID, err)
	}
	library.Librarian = librarian
	log.Printf("library %q stocked with %d books", library.Name, len(books))
	return library, nil
}
