// Package update retrieves the app update manifest.
//
// The default source is a shared note whose body carries the encrypted
// GitHub releases array inside a div. The github source reads the same
// array straight from the releases API.
package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pokerjest/tvboxfeed/internal/httpx"
	"github.com/pokerjest/tvboxfeed/internal/jsonx"
	"github.com/pokerjest/tvboxfeed/internal/model"
	"github.com/pokerjest/tvboxfeed/internal/normalize"
)

const (
	SourceNote   = "note"
	SourceGitHub = "github"

	DefaultNoteURL   = "https://share.note.youdao.com/yws/api/note/d56e2e56e3434f73519e10dc3b831662?sev=j1&cstk=LnuyBs-w"
	DefaultGitHubAPI = "https://api.github.com"
	DefaultRepo      = "geoisam/TVB-Mobile"

	diagnosticFile = "update.txt"
)

var (
	ErrNoContent  = errors.New("update: no content block")
	ErrDecrypt    = errors.New("update: decrypt failed")
	ErrNoReleases = errors.New("update: no releases")
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	divBlock   = regexp.MustCompile(`(?s)<div(.*?)>(.*?)<(.*?)iv>`)
)

type Options struct {
	Source    string
	NoteURL   string
	GitHubAPI string
	Repo      string
	Decrypter Decrypter
	Logger    log.FieldLogger
}

type Client struct {
	http      *httpx.Client
	source    string
	noteURL   string
	githubAPI string
	repo      string
	decrypter Decrypter
	log       log.FieldLogger
}

func NewClient(hc *httpx.Client, opts Options) *Client {
	if opts.Source == "" {
		opts.Source = SourceNote
	}
	if opts.NoteURL == "" {
		opts.NoteURL = DefaultNoteURL
	}
	if opts.GitHubAPI == "" {
		opts.GitHubAPI = DefaultGitHubAPI
	}
	if opts.Repo == "" {
		opts.Repo = DefaultRepo
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	return &Client{
		http:      hc,
		source:    opts.Source,
		noteURL:   opts.NoteURL,
		githubAPI: strings.TrimRight(opts.GitHubAPI, "/"),
		repo:      opts.Repo,
		decrypter: opts.Decrypter,
		log:       opts.Logger.WithField("source", "update"),
	}
}

// Latest returns the newest release or nil when any stage fails.
// sink receives the raw note block and may be nil.
func (c *Client) Latest(ctx context.Context, sink DiagnosticSink) *model.UpdateManifest {
	var (
		m   *model.UpdateManifest
		err error
	)
	switch c.source {
	case SourceGitHub:
		m, err = c.fromGitHub(ctx)
	default:
		m, err = c.fromNote(ctx, sink)
	}
	if err != nil {
		c.log.WithError(err).Debug("no update manifest")
		return nil
	}
	return m
}

func (c *Client) fromNote(ctx context.Context, sink DiagnosticSink) (*model.UpdateManifest, error) {
	root, ok := c.http.FetchJSON(ctx, httpx.Get(c.noteURL, ""))
	if !ok {
		return nil, fmt.Errorf("fetch note: %w", ErrNoContent)
	}
	content, ok := root.Get("content").Text()
	if !ok {
		return nil, fmt.Errorf("note has no content: %w", ErrNoContent)
	}
	block, ok := ExtractContent(content)
	if !ok {
		return nil, ErrNoContent
	}

	if sink != nil {
		if err := sink.WriteDiagnostic(diagnosticFile, []byte(block)); err != nil {
			c.log.WithError(err).Warn("could not write update diagnostics")
		}
	}

	if c.decrypter == nil {
		return nil, fmt.Errorf("%w: no decrypter configured", ErrDecrypt)
	}
	plain, err := c.decrypter.Decrypt(block)
	if err != nil {
		if !errors.Is(err, ErrDecrypt) {
			err = fmt.Errorf("%w: %v", ErrDecrypt, err)
		}
		return nil, err
	}

	releases, err := jsonx.Parse([]byte(plain))
	if err != nil {
		return nil, fmt.Errorf("decrypted payload: %w", err)
	}
	return firstRelease(releases)
}

func (c *Client) fromGitHub(ctx context.Context) (*model.UpdateManifest, error) {
	req := httpx.Get(fmt.Sprintf("%s/repos/%s/releases", c.githubAPI, c.repo), "")
	req.Headers = map[string]string{"Accept": "application/vnd.github+json"}
	root, ok := c.http.FetchJSON(ctx, req)
	if !ok {
		return nil, fmt.Errorf("github releases: status not %d", http.StatusOK)
	}
	return firstRelease(root)
}

// ExtractContent pulls the first div body out of note content once all
// whitespace is removed.
func ExtractContent(content string) (string, bool) {
	body := whitespace.ReplaceAllString(content, "")
	m := divBlock.FindStringSubmatch(body)
	if m == nil || strings.TrimSpace(m[2]) == "" {
		return "", false
	}
	return m[2], true
}

func firstRelease(releases jsonx.Node) (*model.UpdateManifest, error) {
	if !releases.IsArray() || releases.Len() == 0 {
		return nil, ErrNoReleases
	}
	latest := releases.Index(0)
	if !latest.IsObject() {
		return nil, fmt.Errorf("first release is not an object: %w", ErrNoReleases)
	}
	asset := latest.Path("assets").Index(0)
	return &model.UpdateManifest{
		VersionName: strings.TrimPrefix(latest.Get("tag_name").Str(""), "v"),
		VersionCode: latest.Get("name").Str(""),
		AssetName:   asset.Get("name").Str(""),
		AssetSize:   asset.Get("size").Int64Or(0),
		DownloadURL: normalize.Secure(asset.Get("browser_download_url").Str("")),
		ChangeLog:   latest.Get("body").Str(""),
	}, nil
}

// IsAvailable reports whether m describes a version newer than local.
func IsAvailable(m *model.UpdateManifest, local string) bool {
	return m != nil && normalize.IsNewer(m.VersionName, local)
}
