package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/litbook/litbook-server/internal/auth"
	"github.com/litbook/litbook-server/internal/config"
	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/search"
	"github.com/litbook/litbook-server/internal/segment"
	"github.com/litbook/litbook-server/internal/service"
	"github.com/litbook/litbook-server/internal/store/sqlite"
	"github.com/litbook/litbook-server/internal/validation"
)

// Fixture is the YAML seed file layout.
type Fixture struct {
	Users    []FixtureUser     `yaml:"users"`
	Books    []FixtureBook     `yaml:"books"`
	Progress []FixtureProgress `yaml:"progress"`
}

// FixtureUser is a user to register.
type FixtureUser struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// FixtureBook is a book published by the user with the given email.
type FixtureBook struct {
	Author      string           `yaml:"author"`
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Preface     string           `yaml:"preface"`
	Chapters    []FixtureChapter `yaml:"chapters"`
}

// FixtureChapter holds a chapter's raw text.
type FixtureChapter struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Text     string `yaml:"text"`
}

// FixtureProgress places a reader in a book. Chapter is 1-based.
type FixtureProgress struct {
	User      string `yaml:"user"`
	Book      string `yaml:"book"`
	Chapter   int    `yaml:"chapter"`
	Paragraph int    `yaml:"paragraph"`
}

func newSeedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load users, books and reading progress from a YAML fixture",
		Long: `Registers the fixture's users, publishes its books with local
segmentation, and records reading progress. Users that already exist are
reused, so a fixture can be applied more than once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read fixture: %w", err)
			}
			var fixture Fixture
			if err := yaml.Unmarshal(raw, &fixture); err != nil {
				return fmt.Errorf("parse fixture: %w", err)
			}

			sd, err := openSeeder(cfg, log.Logger)
			if err != nil {
				return err
			}
			defer sd.close()

			if err := sd.apply(cmd.Context(), &fixture); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d books, %d progress entries\n",
				len(fixture.Users), len(fixture.Books), len(fixture.Progress))
			return nil
		},
	}
}

// seeder drives the services the API uses, so fixtures go through the same
// validation and segmentation as client writes.
type seeder struct {
	store   *sqlite.Store
	index   *search.Index
	auth    *service.AuthService
	books   *service.BookService
	reading *service.ReadingService
}

func openSeeder(cfg *config.Config, logger *slog.Logger) (*seeder, error) {
	st, err := sqlite.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}
	index, err := search.Open(search.Options{Dir: cfg.Search.IndexPath, Logger: logger})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	key, err := auth.LoadOrGenerateKey(cfg.Auth.KeyPath)
	if err != nil {
		_ = index.Close()
		_ = st.Close()
		return nil, err
	}
	tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
	if err != nil {
		_ = index.Close()
		_ = st.Close()
		return nil, err
	}

	v := validation.New()
	activities := service.NewActivityService(st, v, logger)
	searchService := service.NewSearchService(st, index, logger)

	return &seeder{
		store:   st,
		index:   index,
		auth:    service.NewAuthService(st, tokens, v, logger),
		books:   service.NewBookService(st, segment.New(segment.Options{Logger: logger}), searchService, activities, v, logger),
		reading: service.NewReadingService(st, activities, v, logger),
	}, nil
}

func (sd *seeder) close() {
	_ = sd.index.Close()
	_ = sd.store.Close()
}

func (sd *seeder) apply(ctx context.Context, fixture *Fixture) error {
	users := make(map[string]string, len(fixture.Users))
	for _, u := range fixture.Users {
		id, err := sd.user(ctx, u)
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		users[domain.NormalizeEmail(u.Email)] = id
	}

	books := make(map[string]*domain.Book, len(fixture.Books))
	for _, b := range fixture.Books {
		authorID, ok := users[domain.NormalizeEmail(b.Author)]
		if !ok {
			return fmt.Errorf("book %q: unknown author %s", b.Title, b.Author)
		}

		req := service.BookRequest{Title: b.Title, Description: b.Description, Preface: b.Preface}
		for _, ch := range b.Chapters {
			req.Chapters = append(req.Chapters, service.ChapterInput{
				Title:    ch.Title,
				Subtitle: ch.Subtitle,
				RawText:  ch.Text,
			})
		}

		book, err := sd.books.Create(ctx, authorID, req)
		if err != nil {
			return fmt.Errorf("book %q: %w", b.Title, err)
		}
		books[b.Title] = book
	}

	for _, p := range fixture.Progress {
		userID, ok := users[domain.NormalizeEmail(p.User)]
		if !ok {
			return fmt.Errorf("progress: unknown user %s", p.User)
		}
		book, ok := books[p.Book]
		if !ok {
			return fmt.Errorf("progress: unknown book %q", p.Book)
		}
		if p.Chapter < 1 || p.Chapter > len(book.Chapters) {
			return fmt.Errorf("progress: book %q has no chapter %d", p.Book, p.Chapter)
		}

		_, err := sd.reading.Save(ctx, userID, book.ID, service.SaveProgressRequest{
			ChapterID:      book.Chapters[p.Chapter-1].ID,
			ParagraphIndex: p.Paragraph,
		})
		if err != nil {
			return fmt.Errorf("progress %s in %q: %w", p.User, p.Book, err)
		}
	}

	return nil
}

// user registers u, or returns the existing account's id.
func (sd *seeder) user(ctx context.Context, u FixtureUser) (string, error) {
	resp, err := sd.auth.Register(ctx, service.RegisterRequest{
		Email:    u.Email,
		Password: u.Password,
		Name:     u.Name,
	})
	if err == nil {
		return resp.User.ID, nil
	}
	if !errors.Is(err, domainerrors.AlreadyExists("")) {
		return "", err
	}

	existing, err := sd.store.GetUserByEmail(ctx, domain.NormalizeEmail(u.Email))
	if err != nil {
		return "", err
	}
	return existing.ID, nil
}
