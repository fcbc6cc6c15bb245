package seed

import (
	"context"
	"fmt"
	"log"

	"agora/internal/database"
	"agora/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers       int
	NumPosts       int
	NumAuthors     int
	BooksPerAuthor int
	NumLibraries   int
	// MaxDays spreads post publication dates over the last MaxDays days.
	MaxDays     int
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
	RandSeed    int64
}

// DefaultOptions seeds a small but connected data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:       20,
		NumPosts:       60,
		NumAuthors:     10,
		BooksPerAuthor: 4,
		NumLibraries:   3,
		MaxDays:        90,
	}
}

// Summary counts what Seed created.
type Summary struct {
	Users     int
	Posts     int
	Comments  int
	Likes     int
	Follows   int
	Authors   int
	Books     int
	Libraries int
}

var tagNames = []string{"Books", "Reviews", "Fiction", "History", "Science", "Poetry", "Events", "Libraries"}

// Seed populates the database with demo users, a follow mesh, posts with
// likes and comments, and a catalog stocked into libraries.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	log.Printf("🌱 Seeding %d users, %d posts, %d authors...", opts.NumUsers, opts.NumPosts, opts.NumAuthors)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(db.WithContext(ctx), opts)
	sum := &Summary{}

	users := make([]*models.User, 0, opts.NumUsers)
	for range opts.NumUsers {
		u, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	// Each user follows roughly a third of the others.
	for _, follower := range users {
		for _, following := range users {
			if follower.ID == following.ID || f.rnd.Intn(3) != 0 {
				continue
			}
			if err := f.CreateFollow(ctx, follower, following); err != nil {
				return nil, fmt.Errorf("follow: %w", err)
			}
			sum.Follows++
		}
	}

	tags, err := f.CreateTags(tagNames...)
	if err != nil {
		return nil, err
	}

	if len(users) > 0 {
		for range opts.NumPosts {
			author := users[f.rnd.Intn(len(users))]
			postTags := pick(f, tags, f.rnd.Intn(3))
			post, err := f.CreatePost(author, postTags)
			if err != nil {
				return nil, err
			}
			sum.Posts++

			for _, u := range pick(f, users, f.rnd.Intn(min(len(users), 6))) {
				if err := f.CreateLike(ctx, u, post); err != nil {
					return nil, fmt.Errorf("like: %w", err)
				}
				sum.Likes++
			}
			for _, u := range pick(f, users, f.rnd.Intn(min(len(users), 3))) {
				if _, err := f.CreateComment(u, post); err != nil {
					return nil, err
				}
				sum.Comments++
			}
		}
	}

	var books []models.Book
	for range opts.NumAuthors {
		author, err := f.CreateAuthor()
		if err != nil {
			return nil, err
		}
		sum.Authors++
		for range opts.BooksPerAuthor {
			book, err := f.CreateBook(author)
			if err != nil {
				return nil, err
			}
			books = append(books, *book)
		}
	}
	sum.Books = len(books)

	for range opts.NumLibraries {
		if _, err := f.CreateLibrary(pick(f, books, len(books)/2)); err != nil {
			return nil, err
		}
		sum.Libraries++
	}

	log.Printf("🎉 Seeding complete: %+v", *sum)
	return sum, nil
}

// pick returns n distinct random elements of items.
func pick[T any](f *Factory, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	out := make([]T, 0, n)
	for _, i := range f.rnd.Perm(len(items))[:n] {
		out = append(out, items[i])
	}
	return out
}

// clearData deletes every row the seeder can create, children first.
func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	tables := database.PersistentModels()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
