package repository

import (
	"context"
	"net/url"
	"testing"

	"agora/internal/listquery"
	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, authors AuthorRepository, books BookRepository) (austen, herbert *models.Author) {
	t.Helper()
	ctx := context.Background()
	austen = &models.Author{Name: "Jane Austen"}
	herbert = &models.Author{Name: "Frank Herbert"}
	require.NoError(t, authors.Create(ctx, austen))
	require.NoError(t, authors.Create(ctx, herbert))

	for _, b := range []models.Book{
		{Title: "Emma", PublicationYear: 1815, AuthorID: austen.ID},
		{Title: "Persuasion", PublicationYear: 1817, AuthorID: austen.ID},
		{Title: "Dune", PublicationYear: 1965, AuthorID: herbert.ID},
	} {
		book := b
		require.NoError(t, books.Create(ctx, &book))
	}
	return austen, herbert
}

func bookTitles(books []models.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestBookRepository_ListQuery(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	authors := NewAuthorRepository(db, nil)
	books := NewBookRepository(db, nil)
	ctx := context.Background()
	_, herbert := seedCatalog(t, authors, books)

	tests := []struct {
		name  string
		query url.Values
		want  []string
	}{
		{"default by id", url.Values{}, []string{"Emma", "Persuasion", "Dune"}},
		{"ordering publication_year", url.Values{"ordering": {"publication_year"}}, []string{"Emma", "Persuasion", "Dune"}},
		{"ordering -publication_year", url.Values{"ordering": {"-publication_year"}}, []string{"Dune", "Persuasion", "Emma"}},
		{"ordering title", url.Values{"ordering": {"title"}}, []string{"Dune", "Emma", "Persuasion"}},
		{"filter year", url.Values{"publication_year": {"1817"}}, []string{"Persuasion"}},
		{"filter author", url.Values{"author": {"2"}}, []string{"Dune"}},
		{"filter title exact", url.Values{"title": {"Emma"}}, []string{"Emma"}},
		{"search author name", url.Values{"search": {"austen"}}, []string{"Emma", "Persuasion"}},
		{"search title", url.Values{"search": {"UN"}}, []string{"Dune"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := books.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bookTitles(got))
		})
	}

	byAuthor, err := books.ListByAuthor(ctx, herbert.ID, listquery.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, bookTitles(byAuthor))
}

func TestAuthorRepository_NestedBooksAndCascade(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	authors := NewAuthorRepository(db, nil)
	books := NewBookRepository(db, nil)
	ctx := context.Background()
	austen, _ := seedCatalog(t, authors, books)

	got, err := authors.GetByID(ctx, austen.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Emma", "Persuasion"}, bookTitles(got.Books))

	list, err := authors.List(ctx, url.Values{"ordering": {"name"}})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Frank Herbert", list[0].Name)
	assert.Len(t, list[0].Books, 1)

	filtered, err := authors.List(ctx, url.Values{"search": {"jane"}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	ok, err := authors.Exists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Delete(&models.Author{}, austen.ID).Error)
	remaining, err := books.List(ctx, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, bookTitles(remaining), "books are removed with their author")
}

func TestBookRepository_UpdateDelete(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	authors := NewAuthorRepository(db, nil)
	books := NewBookRepository(db, nil)
	ctx := context.Background()
	_, herbert := seedCatalog(t, authors, books)

	book, err := books.GetByID(ctx, 1)
	require.NoError(t, err)
	book.Title = "Emma (revised)"
	book.AuthorID = herbert.ID
	require.NoError(t, books.Update(ctx, book))

	got, err := books.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Emma (revised)", got.Title)
	assert.Equal(t, herbert.ID, got.AuthorID)

	require.NoError(t, books.Delete(ctx, 1))
	_, err = books.GetByID(ctx, 1)
	assert.Equal(t, models.CodeNotFound, appCode(err))
	assert.Equal(t, models.CodeNotFound, appCode(books.Delete(ctx, 1)))
}

func TestLibraryRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	authors := NewAuthorRepository(db, nil)
	books := NewBookRepository(db, nil)
	libraries := NewLibraryRepository(db)
	ctx := context.Background()
	seedCatalog(t, authors, books)

	lib := &models.Library{Name: "Central"}
	require.NoError(t, libraries.Create(ctx, lib))

	require.NoError(t, libraries.AddBook(ctx, lib.ID, 3))
	require.NoError(t, libraries.AddBook(ctx, lib.ID, 1))
	require.NoError(t, libraries.AddBook(ctx, lib.ID, 1), "adding twice is harmless")
	assert.Equal(t, models.CodeNotFound, appCode(libraries.AddBook(ctx, lib.ID, 99)))

	librarian, err := libraries.AssignLibrarian(ctx, lib.ID, "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", librarian.Name)

	replaced, err := libraries.AssignLibrarian(ctx, lib.ID, "Grace")
	require.NoError(t, err)
	assert.Equal(t, librarian.ID, replaced.ID, "one librarian per library")
	assert.Equal(t, "Grace", replaced.Name)

	_, err = libraries.AssignLibrarian(ctx, 404, "Nobody")
	assert.Equal(t, models.CodeNotFound, appCode(err))

	got, err := libraries.GetByID(ctx, lib.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Emma"}, bookTitles(got.Books))
	require.NotNil(t, got.Librarian)
	assert.Equal(t, "Grace", got.Librarian.Name)

	require.NoError(t, libraries.RemoveBook(ctx, lib.ID, 3))
	require.NoError(t, libraries.Rename(ctx, lib.ID, "Main"))
	got, err = libraries.GetByID(ctx, lib.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)
	assert.Equal(t, []string{"Emma"}, bookTitles(got.Books))

	require.NoError(t, libraries.Delete(ctx, lib.ID))
	var librarians int64
	require.NoError(t, db.Model(&models.Librarian{}).Count(&librarians).Error)
	assert.Zero(t, librarians)
	assert.Equal(t, models.CodeNotFound, appCode(libraries.Delete(ctx, lib.ID)))

	// the books themselves survive
	remaining, err := books.List(ctx, url.Values{})
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}

func TestGroupRepository_SyncAndPermissions(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	groups := NewGroupRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "editor")
	require.NoError(t, groups.Sync(ctx, map[string][]string{
		"Viewers": {models.PermView},
		"Editors": {models.PermView, models.PermCreate, models.PermEdit},
	}))
	require.NoError(t, groups.AddMember(ctx, "Editors", user.ID))
	require.NoError(t, groups.AddMember(ctx, "Viewers", user.ID))

	perms, err := groups.Permissions(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.PermCreate, models.PermEdit, models.PermView}, perms)

	// re-sync narrows the grant
	require.NoError(t, groups.Sync(ctx, map[string][]string{"Editors": {models.PermEdit}}))
	perms, err = groups.Permissions(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.PermEdit, models.PermView}, perms)

	assert.Equal(t, models.CodeNotFound, appCode(groups.AddMember(ctx, "Ghosts", user.ID)))

	all, err := groups.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
