package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// fakeGoogle is a token endpoint that grants "at-code" for the code flow and "at-refreshed" for refreshes
type fakeGoogle struct {
	mu    sync.Mutex
	forms []url.Values
}

func (g *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g.mu.Lock()
	g.forms = append(g.forms, r.PostForm)
	g.mu.Unlock()

	access := "at-refreshed"
	if r.PostForm.Get("grant_type") == "authorization_code" {
		if r.PostForm.Get("code") != "auth-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		access = "at-code"
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"access_token":%q,"refresh_token":"rt-1","token_type":"Bearer","expires_in":3600}`, access)
}

func newTestFlow(t *testing.T) (*tokenFlow, *fakeGoogle, *bytes.Buffer) {
	t.Helper()
	google := &fakeGoogle{}
	srv := httptest.NewServer(google)
	t.Cleanup(srv.Close)

	config := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{"https://www.googleapis.com/auth/drive.file"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.example.com/o/oauth2/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	prompt := &bytes.Buffer{}
	flow := newTokenFlow(config, filepath.Join(t.TempDir(), "token.json"), prompt)
	flow.openURL = func(string) error {
		t.Error("browser should not be opened")
		return nil
	}
	return flow, google, prompt
}

// redirect simulates the browser following Google's redirect back to the loopback listener
func redirect(t *testing.T, authURL string, params url.Values) int {
	t.Helper()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Errorf("bad auth URL %q: %v", authURL, err)
		return 0
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(u.Query().Get("redirect_uri") + "?" + params.Encode())
	if err != nil {
		t.Errorf("callback request failed: %v", err)
		return 0
	}
	resp.Body.Close()
	return resp.StatusCode
}

func stateOf(authURL string) string {
	u, _ := url.Parse(authURL)
	return u.Query().Get("state")
}

func TestTokenFlow_AuthorizesThroughLoopback(t *testing.T) {
	flow, google, prompt := newTestFlow(t)

	var redirectURI string
	flow.openURL = func(authURL string) error {
		u, _ := url.Parse(authURL)
		redirectURI = u.Query().Get("redirect_uri")

		forged := redirect(t, authURL, url.Values{"state": {"state-token"}, "code": {"stolen"}})
		if forged != http.StatusBadRequest {
			t.Errorf("forged state status = %d, want 400", forged)
		}
		if got := redirect(t, authURL, url.Values{"state": {stateOf(authURL)}, "code": {"auth-code"}}); got != http.StatusOK {
			t.Errorf("callback status = %d, want 200", got)
		}
		return nil
	}

	token, err := flow.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() unexpected error: %v", err)
	}
	if token.AccessToken != "at-code" {
		t.Errorf("AccessToken = %q, want at-code", token.AccessToken)
	}

	if !strings.HasPrefix(redirectURI, "http://localhost:") || !strings.HasSuffix(redirectURI, "/callback") {
		t.Errorf("redirect_uri = %q", redirectURI)
	}
	if len(google.forms) != 1 || google.forms[0].Get("redirect_uri") != redirectURI {
		t.Errorf("exchange forms = %v, want one exchange with redirect_uri %q", google.forms, redirectURI)
	}

	saved, err := loadToken(flow.tokenFile)
	if err != nil {
		t.Fatalf("token was not saved: %v", err)
	}
	if saved.AccessToken != "at-code" {
		t.Errorf("saved AccessToken = %q", saved.AccessToken)
	}
	if !strings.Contains(prompt.String(), "Google Drive authorized.") {
		t.Errorf("prompt = %q", prompt.String())
	}
}

func TestTokenFlow_StateDiffersPerRun(t *testing.T) {
	var states []string
	for i := 0; i < 2; i++ {
		flow, _, _ := newTestFlow(t)
		flow.openURL = func(authURL string) error {
			states = append(states, stateOf(authURL))
			redirect(t, authURL, url.Values{"state": {stateOf(authURL)}, "code": {"auth-code"}})
			return nil
		}
		if _, err := flow.Token(context.Background()); err != nil {
			t.Fatalf("Token() unexpected error: %v", err)
		}
	}

	if states[0] == "" || states[0] == states[1] {
		t.Errorf("states = %q, want distinct non-empty values", states)
	}
}

func TestTokenFlow_RepeatedCallbacksDoNotBlock(t *testing.T) {
	flow, _, _ := newTestFlow(t)
	flow.openURL = func(authURL string) error {
		params := url.Values{"state": {stateOf(authURL)}, "code": {"auth-code"}}
		for i := 0; i < 3; i++ {
			if got := redirect(t, authURL, params); got != http.StatusOK {
				t.Errorf("callback %d status = %d, want 200", i+1, got)
			}
		}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := flow.Token(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Token() unexpected error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Token() did not return after repeated callbacks")
	}
}

func TestTokenFlow_DeniedConsent(t *testing.T) {
	flow, google, _ := newTestFlow(t)
	flow.openURL = func(authURL string) error {
		redirect(t, authURL, url.Values{"state": {stateOf(authURL)}, "error": {"access_denied"}})
		return nil
	}

	_, err := flow.Token(context.Background())
	if err == nil || !strings.Contains(err.Error(), "access_denied") {
		t.Fatalf("Token() error = %v, want access_denied", err)
	}
	if len(google.forms) != 0 {
		t.Error("no code exchange should happen after a denial")
	}
}

func TestTokenFlow_CancelledWhileWaiting(t *testing.T) {
	flow, _, _ := newTestFlow(t)
	ctx, cancel := context.WithCancel(context.Background())
	flow.openURL = func(string) error {
		cancel()
		return nil
	}

	if _, err := flow.Token(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Token() error = %v, want context.Canceled", err)
	}
}

func TestTokenFlow_UsesValidCachedToken(t *testing.T) {
	flow, google, _ := newTestFlow(t)
	cached := &oauth2.Token{AccessToken: "at-cached", RefreshToken: "rt-1", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	if err := saveToken(flow.tokenFile, cached); err != nil {
		t.Fatal(err)
	}

	token, err := flow.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() unexpected error: %v", err)
	}
	if token.AccessToken != "at-cached" {
		t.Errorf("AccessToken = %q, want at-cached", token.AccessToken)
	}
	if len(google.forms) != 0 {
		t.Error("a valid cached token should not hit the token endpoint")
	}
}

func TestTokenFlow_RefreshSavesNewToken(t *testing.T) {
	flow, _, _ := newTestFlow(t)
	expired := &oauth2.Token{AccessToken: "at-old", RefreshToken: "rt-1", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour)}
	if err := saveToken(flow.tokenFile, expired); err != nil {
		t.Fatal(err)
	}

	token, err := flow.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() unexpected error: %v", err)
	}
	if token.AccessToken != "at-refreshed" {
		t.Errorf("AccessToken = %q, want at-refreshed", token.AccessToken)
	}

	saved, err := loadToken(flow.tokenFile)
	if err != nil {
		t.Fatal(err)
	}
	if saved.AccessToken != "at-refreshed" {
		t.Errorf("saved AccessToken = %q, want at-refreshed", saved.AccessToken)
	}
}

func TestTokenFlow_ReportsRefreshSaveFailure(t *testing.T) {
	flow, _, prompt := newTestFlow(t)
	expired := &oauth2.Token{AccessToken: "at-old", RefreshToken: "rt-1", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour)}
	if err := saveToken(flow.tokenFile, expired); err != nil {
		t.Fatal(err)
	}
	flow.save = func(string, *oauth2.Token) error {
		return os.ErrPermission
	}

	token, err := flow.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() unexpected error: %v", err)
	}
	if token.AccessToken != "at-refreshed" {
		t.Errorf("AccessToken = %q, want at-refreshed", token.AccessToken)
	}
	if !strings.Contains(prompt.String(), "Warning: couldn't save refreshed token") {
		t.Errorf("prompt = %q, want a save warning", prompt.String())
	}
}
