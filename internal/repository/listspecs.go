package repository

import "agora/internal/listquery"

// PostListSpec drives GET /posts.
var PostListSpec = listquery.Spec{
	Filters: map[string]listquery.Filter{
		"author":    {Where: "posts.user_id IN (SELECT id FROM users WHERE username = ?)"},
		"author_id": {Column: "posts.user_id", Kind: listquery.Int},
		"tag":       {Where: "posts.id IN (SELECT pt.post_id FROM post_tags pt JOIN tags ON tags.id = pt.tag_id WHERE tags.slug = ?)"},
	},
	Search: []string{"posts.title", "posts.content"},
	Ordering: map[string]string{
		"published_date": "posts.published_date",
		"title":          "posts.title",
	},
	Default:  "-published_date",
	TieBreak: "posts.id",
}

// CommentListSpec drives GET /comments.
var CommentListSpec = listquery.Spec{
	Filters: map[string]listquery.Filter{
		"post":      {Column: "comments.post_id", Kind: listquery.Int},
		"author_id": {Column: "comments.user_id", Kind: listquery.Int},
	},
	Search:   []string{"comments.content"},
	Ordering: map[string]string{"created_at": "comments.created_at"},
	Default:  "created_at",
	TieBreak: "comments.id",
}

// BookListSpec drives GET /books.
var BookListSpec = listquery.Spec{
	Filters: map[string]listquery.Filter{
		"title":            {Column: "books.title"},
		"publication_year": {Column: "books.publication_year", Kind: listquery.Int},
		"author":           {Column: "books.author_id", Kind: listquery.Int},
	},
	Search: []string{
		"books.title",
		`books.author_id IN (SELECT id FROM authors WHERE LOWER(authors.name) LIKE ? ESCAPE '\')`,
	},
	Ordering: map[string]string{
		"title":            "books.title",
		"publication_year": "books.publication_year",
	},
	TieBreak: "books.id",
}

// AuthorListSpec drives GET /authors.
var AuthorListSpec = listquery.Spec{
	Filters: map[string]listquery.Filter{
		"name": {Column: "authors.name"},
	},
	Search:   []string{"authors.name"},
	Ordering: map[string]string{"name": "authors.name"},
	TieBreak: "authors.id",
}
