package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/infrastructure/utils"
)

type fakeAccountManager struct {
	saved       []*dto.AccountInfo
	disconnects int
}

func (f *fakeAccountManager) SaveAccount(_ context.Context, _ string, _ *model.MediaPlatform, info *dto.AccountInfo, _, _ string, _ *int64) (*dto.SaveResult, error) {
	f.saved = append(f.saved, info)
	return &dto.SaveResult{Status: "success", Message: "Account connected successfully", AccountID: 1}, nil
}

func (f *fakeAccountManager) DisconnectAccount(_ context.Context, _ *model.SocialAccount) error {
	f.disconnects++
	return nil
}

type fakeMedia struct {
	publicURL string
	localPath string
}

func (f *fakeMedia) PublicURL(_ *model.PostFile) (string, error) { return f.publicURL, nil }
func (f *fakeMedia) LocalPath(_ *model.PostFile) (string, error) { return f.localPath, nil }

type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	return c.next.RoundTrip(req)
}

func testPlatform() *model.MediaPlatform {
	return &model.MediaPlatform{
		ID:     1,
		Name:   "TikTok",
		Slug:   model.PlatformTikTok,
		Status: model.PlatformStatusActive,
		Configuration: model.PlatformConfiguration{
			ClientID:     "tiktok-client-key",
			ClientSecret: "tiktok-client-secret",
			RedirectBase: "https://app.example.com",
		},
	}
}

func testAccount(platform *model.MediaPlatform) *model.SocialAccount {
	return &model.SocialAccount{
		ID:       7,
		Guard:    "admin",
		Name:     "creator",
		Token:    "access-token",
		Status:   model.AccountStatusConnected,
		Platform: platform,
	}
}

// TestAccount_AuthRedirect checks the consent URL carries the state nonce
// and a challenge derived from the returned verifier.
func TestAccount_AuthRedirect(t *testing.T) {
	adapter := NewAccount(nil, &fakeAccountManager{}, &fakeMedia{})

	redirect, state, err := adapter.AuthRedirect(testPlatform())
	require.NoError(t, err)
	require.NotNil(t, state)
	require.NotEmpty(t, state.State)
	require.NotEmpty(t, state.CodeVerifier)
	require.Equal(t, model.PlatformTikTok, state.PlatformSlug)

	parsed, err := url.Parse(redirect)
	require.NoError(t, err)
	require.Equal(t, "www.tiktok.com", parsed.Host)
	require.Equal(t, "/v2/auth/authorize/", parsed.Path)

	q := parsed.Query()
	require.Equal(t, "tiktok-client-key", q.Get("client_key"))
	require.Equal(t, state.State, q.Get("state"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.Equal(t, utils.CodeChallengeS256(state.CodeVerifier), q.Get("code_challenge"))
	require.Equal(t, "https://app.example.com/account/tiktok/callback", q.Get("redirect_uri"))
}

// TestAccount_AuthRedirect_MissingClientKey checks unconfigured platforms
// are rejected before building a URL.
func TestAccount_AuthRedirect_MissingClientKey(t *testing.T) {
	adapter := NewAccount(nil, &fakeAccountManager{}, &fakeMedia{})
	platform := testPlatform()
	platform.Configuration.ClientID = ""

	_, _, err := adapter.AuthRedirect(platform)
	require.Error(t, err)
	var cfgErr *model.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

// TestAccount_ExchangeCode checks the token request is form encoded and
// carries the PKCE verifier.
func TestAccount_ExchangeCode(t *testing.T) {
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/oauth/token/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		captured = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-1","refresh_token":"rt-1","expires_in":86400,"open_id":"open-1"}`)
	}))
	defer server.Close()

	adapter := NewAccount(server.Client(), &fakeAccountManager{}, &fakeMedia{})
	adapter.APIURL = server.URL

	tok, err := adapter.ExchangeCode(context.Background(), "auth-code", "verifier-123", testPlatform())
	require.NoError(t, err)
	require.Equal(t, "at-1", tok.AccessToken)
	require.Equal(t, "rt-1", tok.RefreshToken)
	require.Equal(t, "authorization_code", captured.Get("grant_type"))
	require.Equal(t, "verifier-123", captured.Get("code_verifier"))
	require.Equal(t, "tiktok-client-key", captured.Get("client_key"))
}

// TestAccount_ExchangeCode_ProviderError checks non-2xx responses surface
// as an auth exchange error carrying the body.
func TestAccount_ExchangeCode_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer server.Close()

	adapter := NewAccount(server.Client(), &fakeAccountManager{}, &fakeMedia{})
	adapter.APIURL = server.URL

	_, err := adapter.ExchangeCode(context.Background(), "bad", "verifier", testPlatform())
	require.Error(t, err)
	var exErr *model.AuthExchangeError
	require.ErrorAs(t, err, &exErr)
	require.Equal(t, http.StatusBadRequest, exErr.StatusCode)
	require.Contains(t, exErr.Body, "invalid_grant")
}

// TestAccount_RefreshAccessToken_SameEndpoint checks refresh and exchange
// hit the same token endpoint with different grant types.
func TestAccount_RefreshAccessToken_SameEndpoint(t *testing.T) {
	var paths []string
	var grants []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		paths = append(paths, r.URL.Path)
		grants = append(grants, r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-2","refresh_token":"rt-2","expires_in":86400}`)
	}))
	defer server.Close()

	adapter := NewAccount(server.Client(), &fakeAccountManager{}, &fakeMedia{})
	adapter.APIURL = server.URL
	platform := testPlatform()

	_, err := adapter.ExchangeCode(context.Background(), "code", "verifier", platform)
	require.NoError(t, err)

	result, err := adapter.RefreshAccessToken(context.Background(), platform, "rt-1")
	require.NoError(t, err)
	require.True(t, result.Successful())
	require.NotNil(t, result.Token)
	require.Equal(t, "at-2", result.Token.AccessToken)

	require.Equal(t, []string{"/v2/oauth/token/", "/v2/oauth/token/"}, paths)
	require.Equal(t, []string{"authorization_code", "refresh_token"}, grants)
}

// TestAccount_Send_NoFile checks a post without an attachment fails with a
// constraint message and never touches the network.
func TestAccount_Send_NoFile(t *testing.T) {
	transport := &countingTransport{next: http.DefaultTransport}
	adapter := NewAccount(&http.Client{Transport: transport}, &fakeAccountManager{}, &fakeMedia{})

	post := &model.SocialPost{
		ID:      1,
		Content: "caption",
		Account: testAccount(testPlatform()),
	}
	result := adapter.Send(context.Background(), post)
	require.False(t, result.Status)
	require.Equal(t, "TikTok requires a video file", result.Response)
	require.Zero(t, transport.calls)
}

// TestAccount_Send_RejectsPlainHTTP checks non-HTTPS media URLs fail
// before the preflight request.
func TestAccount_Send_RejectsPlainHTTP(t *testing.T) {
	transport := &countingTransport{next: http.DefaultTransport}
	media := &fakeMedia{publicURL: "http://cdn.example.com/video.mp4"}
	adapter := NewAccount(&http.Client{Transport: transport}, &fakeAccountManager{}, media)

	post := &model.SocialPost{
		ID:      1,
		Content: "caption",
		File:    &model.PostFile{ID: 1, FileName: "video.mp4", MimeType: "video/mp4"},
		Account: testAccount(testPlatform()),
	}
	result := adapter.Send(context.Background(), post)
	require.False(t, result.Status)
	require.Contains(t, result.Response, "HTTPS")
	require.Zero(t, transport.calls)
}

func newPublishServer(t *testing.T, capture *map[string]interface{}, response string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video.mp4":
			w.WriteHeader(http.StatusPartialContent)
			fmt.Fprint(w, "x")
		case "/v2/post/publish/video/init/":
			require.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			*capture = payload
			w.WriteHeader(status)
			fmt.Fprint(w, response)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
}

// TestAccount_Send_Success checks the happy path returns the pending
// publish id from the PULL_FROM_URL init call.
func TestAccount_Send_Success(t *testing.T) {
	var payload map[string]interface{}
	server := newPublishServer(t, &payload, `{"data":{"publish_id":"pub-123"},"error":{"code":"ok"}}`, http.StatusOK)
	defer server.Close()

	media := &fakeMedia{publicURL: server.URL + "/video.mp4"}
	adapter := NewAccount(server.Client(), &fakeAccountManager{}, media)
	adapter.APIURL = server.URL

	link := "https://example.com/more"
	post := &model.SocialPost{
		ID:      1,
		Content: "watch this",
		Link:    &link,
		File:    &model.PostFile{ID: 1, FileName: "video.mp4", MimeType: "video/mp4"},
		Account: testAccount(testPlatform()),
	}
	result := adapter.Send(context.Background(), post)
	require.True(t, result.Status)
	require.Equal(t, "pub-123", result.PublishID)
	require.Equal(t, "pub-123", result.ExternalRef())

	sourceInfo := payload["source_info"].(map[string]interface{})
	require.Equal(t, "PULL_FROM_URL", sourceInfo["source"])
	require.Equal(t, media.publicURL, sourceInfo["video_url"])
	postInfo := payload["post_info"].(map[string]interface{})
	require.Equal(t, "watch this https://example.com/more", postInfo["title"])
}

// TestAccount_Send_CaptionTruncated checks an overlong caption is cut to
// the limit and ends with an ellipsis.
func TestAccount_Send_CaptionTruncated(t *testing.T) {
	var payload map[string]interface{}
	server := newPublishServer(t, &payload, `{"data":{"publish_id":"pub-456"},"error":{"code":"ok"}}`, http.StatusOK)
	defer server.Close()

	media := &fakeMedia{publicURL: server.URL + "/video.mp4"}
	adapter := NewAccount(server.Client(), &fakeAccountManager{}, media)
	adapter.APIURL = server.URL

	post := &model.SocialPost{
		ID:      1,
		Content: strings.Repeat("a", 2500),
		File:    &model.PostFile{ID: 1, FileName: "video.mp4", MimeType: "video/mp4"},
		Account: testAccount(testPlatform()),
	}
	result := adapter.Send(context.Background(), post)
	require.True(t, result.Status)

	title := payload["post_info"].(map[string]interface{})["title"].(string)
	require.Len(t, title, captionLimit)
	require.True(t, strings.HasSuffix(title, "..."))
}

// TestAccount_Send_ProviderError checks a rejected init call surfaces the
// provider message with markup stripped.
func TestAccount_Send_ProviderError(t *testing.T) {
	var payload map[string]interface{}
	server := newPublishServer(t, &payload, `{"error":{"code":"spam_risk","message":"<b>Too many</b> pending shares"}}`, http.StatusBadRequest)
	defer server.Close()

	media := &fakeMedia{publicURL: server.URL + "/video.mp4"}
	adapter := NewAccount(server.Client(), &fakeAccountManager{}, media)
	adapter.APIURL = server.URL

	post := &model.SocialPost{
		ID:      1,
		Content: "caption",
		File:    &model.PostFile{ID: 1, FileName: "video.mp4", MimeType: "video/mp4"},
		Account: testAccount(testPlatform()),
	}
	result := adapter.Send(context.Background(), post)
	require.False(t, result.Status)
	require.Equal(t, "Too many pending shares", result.Response)
}

// TestAccount_AccountDetails_ErrorEnvelope checks a non-ok provider error
// disconnects the account exactly once and returns the provider message.
func TestAccount_AccountDetails_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/video/list/", r.URL.Path)
		fmt.Fprint(w, `{"data":{},"error":{"code":"access_token_invalid","message":"The access token is invalid"}}`)
	}))
	defer server.Close()

	accounts := &fakeAccountManager{}
	adapter := NewAccount(server.Client(), accounts, &fakeMedia{})
	adapter.APIURL = server.URL

	result := adapter.AccountDetails(context.Background(), testAccount(testPlatform()))
	require.False(t, result.Status)
	require.Equal(t, "The access token is invalid", result.Message)
	require.Equal(t, 1, accounts.disconnects)
}

// TestAccount_AccountDetails_Empty checks an account with no videos maps
// to an empty data array, not a nil one.
func TestAccount_AccountDetails_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"videos":[]},"error":{"code":"ok"}}`)
	}))
	defer server.Close()

	accounts := &fakeAccountManager{}
	adapter := NewAccount(server.Client(), accounts, &fakeMedia{})
	adapter.APIURL = server.URL

	result := adapter.AccountDetails(context.Background(), testAccount(testPlatform()))
	require.True(t, result.Status)
	require.NotNil(t, result.Response)
	require.NotNil(t, result.Response.Data)
	require.Empty(t, result.Response.Data)
	require.Zero(t, accounts.disconnects)
}

// TestAccount_AccountDetails_Normalizes checks one video maps into the
// shared feed schema.
func TestAccount_AccountDetails_Normalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"videos":[{
			"id":"vid-1",
			"title":"My clip",
			"video_description":"A description",
			"cover_image_url":"https://cdn.example.com/cover.jpg",
			"embed_link":"https://www.tiktok.com/embed/vid-1",
			"create_time":1700000000,
			"view_count":120,
			"like_count":12,
			"comment_count":3
		}]},"error":{"code":"ok"}}`)
	}))
	defer server.Close()

	adapter := NewAccount(server.Client(), &fakeAccountManager{}, &fakeMedia{})
	adapter.APIURL = server.URL

	result := adapter.AccountDetails(context.Background(), testAccount(testPlatform()))
	require.True(t, result.Status)
	require.Len(t, result.Response.Data, 1)

	item := result.Response.Data[0]
	require.Equal(t, "https://cdn.example.com/cover.jpg", item.FullPicture)
	require.Equal(t, "A description", item.Message)
	require.Equal(t, int64(1700000000), item.CreatedTime)
	require.Equal(t, int64(12), item.Reactions.Summary.TotalCount)
	require.Equal(t, int64(3), item.Comments.Summary.TotalCount)
	require.Equal(t, int64(120), item.Views.Count)
	require.Equal(t, "https://www.tiktok.com/@creator/video/vid-1", item.PermalinkURL)
	require.Equal(t, "EVERYONE", item.Privacy.Value)
	require.Equal(t, "video", item.Type)
}

// TestAccount_CompleteConnection checks the profile is resolved and the
// account handed to the manager with expiries filled in.
func TestAccount_CompleteConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/user/info/", r.URL.Path)
		require.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":{"user":{"open_id":"open-1","display_name":"creator","avatar_url":"https://cdn.example.com/a.jpg"}}}`)
	}))
	defer server.Close()

	accounts := &fakeAccountManager{}
	adapter := NewAccount(server.Client(), accounts, &fakeMedia{})
	adapter.APIURL = server.URL

	tok := &dto.TokenResponse{AccessToken: "at-1", RefreshToken: "rt-1", ExpiresIn: 86400}
	result, err := adapter.CompleteConnection(context.Background(), tok, "admin", testPlatform(), model.AccountTypeProfile, model.ConnectionOfficial, nil)
	require.NoError(t, err)
	require.Equal(t, "success", result.Status)
	require.Len(t, accounts.saved, 1)

	info := accounts.saved[0]
	require.Equal(t, "open-1", info.AccountID)
	require.Equal(t, "creator", info.Name)
	require.Equal(t, "at-1", info.Token)
	require.NotNil(t, info.TokenExpireAt)
	require.NotNil(t, info.RefreshTokenExpireAt)
}

// TestAccount_CompleteConnection_MissingOpenID checks a profile without an
// open_id cannot be linked.
func TestAccount_CompleteConnection_MissingOpenID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"user":{"display_name":"creator"}}}`)
	}))
	defer server.Close()

	adapter := NewAccount(server.Client(), &fakeAccountManager{}, &fakeMedia{})
	adapter.APIURL = server.URL

	_, err := adapter.CompleteConnection(context.Background(), &dto.TokenResponse{AccessToken: "at"}, "admin", testPlatform(), model.AccountTypeProfile, model.ConnectionOfficial, nil)
	require.Error(t, err)
	var linkErr *model.AccountLinkError
	require.ErrorAs(t, err, &linkErr)
}
