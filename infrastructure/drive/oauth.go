package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// consentTimeout bounds how long the loopback listener waits for the browser
const consentTimeout = 5 * time.Minute

// tokenFlow obtains a user token for Drive: cached, refreshed, or granted in the browser
type tokenFlow struct {
	config    *oauth2.Config
	tokenFile string
	prompt    io.Writer
	openURL   func(url string) error
	save      func(file string, token *oauth2.Token) error
}

func newTokenFlow(config *oauth2.Config, tokenFile string, prompt io.Writer) *tokenFlow {
	if prompt == nil {
		prompt = os.Stderr
	}
	return &tokenFlow{
		config:    config,
		tokenFile: tokenFile,
		prompt:    prompt,
		openURL:   openBrowser,
		save:      saveToken,
	}
}

// Token returns a usable token, running the consent flow only when the cached one is unusable
func (f *tokenFlow) Token(ctx context.Context) (*oauth2.Token, error) {
	if token, ok := f.cached(ctx); ok {
		return token, nil
	}
	return f.authorize(ctx)
}

func (f *tokenFlow) cached(ctx context.Context) (*oauth2.Token, bool) {
	stored, err := loadToken(f.tokenFile)
	if err != nil {
		return nil, false
	}

	token, err := f.config.TokenSource(ctx, stored).Token()
	if err != nil {
		fmt.Fprintf(f.prompt, "Stored Google token could not be refreshed (%v); authorizing again.\n", err)
		return nil, false
	}

	if token.AccessToken != stored.AccessToken {
		if err := f.save(f.tokenFile, token); err != nil {
			fmt.Fprintf(f.prompt, "Warning: couldn't save refreshed token: %v\n", err)
		}
	}
	return token, true
}

// authorize serves a one-shot callback on an ephemeral localhost port and
// exchanges the code it receives for a token
func (f *tokenFlow) authorize(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return nil, fmt.Errorf("unable to start local callback listener: %w", err)
	}

	config := *f.config
	config.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", ln.Addr().(*net.TCPAddr).Port)

	cb := &callback{state: uuid.NewString(), result: make(chan callbackResult, 1)}
	mux := http.NewServeMux()
	mux.Handle("/callback", cb)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.deliver(callbackResult{err: err})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	authURL := config.AuthCodeURL(cb.state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintln(f.prompt)
	fmt.Fprintln(f.prompt, "Authorize reelnotes to upload to Google Drive.")
	fmt.Fprintln(f.prompt, "If no browser opens, visit:")
	fmt.Fprintln(f.prompt)
	fmt.Fprintln(f.prompt, authURL)
	fmt.Fprintln(f.prompt)

	if err := f.openURL(authURL); err != nil {
		fmt.Fprintf(f.prompt, "Could not open a browser: %v\n", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, consentTimeout)
	defer cancel()

	var res callbackResult
	select {
	case res = <-cb.result:
	case <-waitCtx.Done():
		return nil, fmt.Errorf("waiting for Google authorization: %w", waitCtx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	token, err := config.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code: %w", err)
	}

	if err := f.save(f.tokenFile, token); err != nil {
		fmt.Fprintf(f.prompt, "Warning: couldn't save token: %v\n", err)
	}
	fmt.Fprintln(f.prompt, "Google Drive authorized.")
	return token, nil
}

type callbackResult struct {
	code string
	err  error
}

// callback accepts the first redirect carrying the expected state.
// Requests with a foreign state are rejected and do not end the flow.
type callback struct {
	state  string
	result chan callbackResult
}

func (c *callback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != c.state {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	if reason := q.Get("error"); reason != "" {
		c.deliver(callbackResult{err: fmt.Errorf("authorization denied: %s", reason)})
		http.Error(w, "Authorization was not granted. You can close this window.", http.StatusForbidden)
		return
	}

	code := q.Get("code")
	if code == "" {
		c.deliver(callbackResult{err: errors.New("no authorization code in callback")})
		http.Error(w, "No authorization code received.", http.StatusBadRequest)
		return
	}

	c.deliver(callbackResult{code: code})
	fmt.Fprint(w, "<html><body><h1>reelnotes is authorized</h1><p>You can close this window.</p></body></html>")
}

// deliver never blocks; only the first result is kept
func (c *callback) deliver(res callbackResult) {
	select {
	case c.result <- res:
	default:
	}
}

func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

// saveToken writes the token readable only by the current user
func saveToken(file string, token *oauth2.Token) error {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

// browserCommands lists openers per OS, tried in order
var browserCommands = map[string][][]string{
	"linux":   {{"xdg-open"}, {"wslview"}},
	"darwin":  {{"open"}},
	"windows": {{"rundll32", "url.dll,FileProtocolHandler"}},
}

func openBrowser(url string) error {
	for _, argv := range browserCommands[runtime.GOOS] {
		path, err := exec.LookPath(argv[0])
		if err != nil {
			continue
		}
		return exec.Command(path, append(argv[1:], url)...).Start()
	}
	return fmt.Errorf("no browser opener found for %s", runtime.GOOS)
}

// NewClientWithOAuth creates a Drive client authorized by the user in a browser.
// The token is cached at tokenPath so consent is only asked once.
func NewClientWithOAuth(ctx context.Context, credentialsPath, tokenPath string, prompt io.Writer, opts ...ClientOption) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.driveService != nil {
		return c, nil
	}

	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read OAuth credentials file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse OAuth credentials: %w", err)
	}

	token, err := newTokenFlow(config, tokenPath, prompt).Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get OAuth token: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}
	c.driveService = &GoogleDriveService{service: srv}
	return c, nil
}
