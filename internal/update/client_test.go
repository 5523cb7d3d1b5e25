package update

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerjest/tvboxfeed/internal/httpx"
	"github.com/pokerjest/tvboxfeed/internal/model"
	"github.com/pokerjest/tvboxfeed/internal/upstreamtest"
)

const (
	testKey  = "tvbox-pjs-update"
	notePath = "/yws/api/note/abc"
)

const releases = `[
	{"tag_name":"v1.2.3","name":"TVBox 1.2.3","body":"- fixes","assets":[{"name":"tvbox.apk","size":10485760,"browser_download_url":"http://github.com/geoisam/TVB-Mobile/releases/download/v1.2.3/tvbox.apk"}]},
	{"tag_name":"v1.2.2"}
]`

type memorySink struct {
	files map[string]string
	err   error
}

func (m *memorySink) WriteDiagnostic(name string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.files == nil {
		m.files = map[string]string{}
	}
	m.files[name] = string(data)
	return nil
}

func noteBody(t *testing.T, block string) string {
	t.Helper()
	content := "<?xml version=\"1.0\"?>\n<note>\n  <div class=\"para\">\n    " + block + "\n  </div>\n</note>"
	b, err := json.Marshal(map[string]string{"content": content})
	require.NoError(t, err)
	return string(b)
}

func newNoteClient(t *testing.T, status int, body string, d Decrypter) (*Client, *upstreamtest.Server) {
	t.Helper()
	srv := upstreamtest.New(t).Handle(notePath, status, body)
	return NewClient(httpx.NewClient(httpx.Options{}), Options{
		NoteURL:   srv.URL + notePath,
		Decrypter: d,
	}), srv
}

func TestLatest_Note(t *testing.T) {
	aes, err := NewAESDecrypter(testKey, testKey)
	require.NoError(t, err)
	block := aes.Encrypt(releases)

	c, _ := newNoteClient(t, http.StatusOK, noteBody(t, block), aes)
	sink := &memorySink{}

	m := c.Latest(context.Background(), sink)

	require.NotNil(t, m)
	assert.Equal(t, model.UpdateManifest{
		VersionName: "1.2.3",
		VersionCode: "TVBox 1.2.3",
		AssetName:   "tvbox.apk",
		AssetSize:   10485760,
		DownloadURL: "https://github.com/geoisam/TVB-Mobile/releases/download/v1.2.3/tvbox.apk",
		ChangeLog:   "- fixes",
	}, *m)
	assert.Equal(t, block, sink.files["update.txt"])

	assert.True(t, IsAvailable(m, "1.2.2"))
	assert.False(t, IsAvailable(m, "v1.2.3"))
	assert.False(t, IsAvailable(nil, "0"))
}

func TestLatest_DecryptFailureStillWritesDiagnostics(t *testing.T) {
	failing := DecrypterFunc(func(string) (string, error) { return "", errors.New("bad key") })
	c, _ := newNoteClient(t, http.StatusOK, noteBody(t, "Zm9vYmFy"), failing)
	sink := &memorySink{}

	assert.Nil(t, c.Latest(context.Background(), sink))
	assert.Equal(t, "Zm9vYmFy", sink.files["update.txt"])
}

func TestLatest_SinkFailureIgnored(t *testing.T) {
	aes, _ := NewAESDecrypter(testKey, testKey)
	c, _ := newNoteClient(t, http.StatusOK, noteBody(t, aes.Encrypt(releases)), aes)

	m := c.Latest(context.Background(), &memorySink{err: errors.New("read-only")})
	require.NotNil(t, m)
	assert.Equal(t, "1.2.3", m.VersionName)

	m = c.Latest(context.Background(), FileSink{})
	require.NotNil(t, m)

	m = c.Latest(context.Background(), nil)
	require.NotNil(t, m)
}

func TestLatest_Absent(t *testing.T) {
	aes, _ := NewAESDecrypter(testKey, testKey)
	emptyArray := aes.Encrypt(`[]`)
	notArray := aes.Encrypt(`{"tag_name":"v1"}`)

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{}`},
		{"no content", http.StatusOK, `{"title":"x"}`},
		{"no div", http.StatusOK, `{"content":"plain text"}`},
		{"blank div", http.StatusOK, `{"content":"<div>   </div>"}`},
		{"garbage cipher", http.StatusOK, `{"content":"<div>!!notbase64!!</div>"}`},
		{"empty release array", http.StatusOK, `{"content":"<div>` + emptyArray + `</div>"}`},
		{"payload not array", http.StatusOK, `{"content":"<div>` + notArray + `</div>"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newNoteClient(t, tt.status, tt.body, aes)
			assert.Nil(t, c.Latest(context.Background(), &memorySink{}))
		})
	}
}

func TestLatest_GitHub(t *testing.T) {
	srv := upstreamtest.New(t).Handle("/repos/geoisam/TVB-Mobile/releases", http.StatusOK, releases)
	c := NewClient(httpx.NewClient(httpx.Options{}), Options{Source: SourceGitHub, GitHubAPI: srv.URL})

	m := c.Latest(context.Background(), nil)

	require.NotNil(t, m)
	assert.Equal(t, "1.2.3", m.VersionName)
	last, _ := srv.Last()
	assert.Equal(t, "application/vnd.github+json", last.Header.Get("Accept"))
}

func TestLatest_MissingAssets(t *testing.T) {
	srv := upstreamtest.New(t).Handle("/repos/o/r/releases", http.StatusOK, `[{"tag_name":"v2.0.0","assets":[]}]`)
	c := NewClient(httpx.NewClient(httpx.Options{}), Options{Source: SourceGitHub, GitHubAPI: srv.URL, Repo: "o/r"})

	m := c.Latest(context.Background(), nil)

	require.NotNil(t, m)
	assert.Equal(t, "2.0.0", m.VersionName)
	assert.Empty(t, m.AssetName)
	assert.Zero(t, m.AssetSize)
}

func TestExtractContent(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`<div class="a">abc</div>`, "abc", true},
		{"<div>\n  a b\tc \n</div><div>second</div>", "abc", true},
		{"<div></div>", "", false},
		{"no markup", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractContent(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestAESDecrypter(t *testing.T) {
	d, err := NewAESDecrypter(testKey, testKey)
	require.NoError(t, err)

	plain, err := d.Decrypt(d.Encrypt("hello 世界"))
	require.NoError(t, err)
	assert.Equal(t, "hello 世界", plain)

	_, err = d.Decrypt("not base64")
	assert.ErrorIs(t, err, ErrDecrypt)
	_, err = d.Decrypt("Zm9vYmFy")
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = NewAESDecrypter("short", testKey)
	assert.Error(t, err)
	_, err = NewAESDecrypter(testKey, "short")
	assert.Error(t, err)
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, FileSink{Dir: dir}.WriteDiagnostic("update.txt", []byte("raw")))

	b, err := os.ReadFile(filepath.Join(dir, "logs", "update.txt"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	assert.ErrorIs(t, FileSink{}.WriteDiagnostic("update.txt", nil), ErrNoDir)
}
