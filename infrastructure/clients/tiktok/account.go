package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
	"mx-social/infrastructure/utils"

	"github.com/google/go-querystring/query"
)

const (
	baseURL        = "https://www.tiktok.com"
	apiURL         = "https://open.tiktokapis.com"
	defaultVersion = "v2"

	authScope    = "user.info.basic,video.publish,video.list"
	captionLimit = 2200

	userInfoFields  = "open_id,union_id,avatar_url,display_name"
	videoListFields = "id,title,video_description,cover_image_url,embed_link,create_time,view_count,like_count,comment_count"
)

// Account integrates one TikTok developer app. Publishing uses the
// PULL_FROM_URL flow: TikTok fetches the video from a public HTTPS URL and
// finishes the publish asynchronously.
type Account struct {
	// Overridable roots so tests can point at a local server.
	BaseURL string
	APIURL  string

	httpClient *http.Client
	accounts   repository.IAccountManager
	media      repository.IMediaResolver
}

func NewAccount(httpClient *http.Client, accounts repository.IAccountManager, media repository.IMediaResolver) *Account {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Account{
		BaseURL:    baseURL,
		APIURL:     apiURL,
		httpClient: httpClient,
		accounts:   accounts,
		media:      media,
	}
}

// apiEndpoint builds <root>/<version>/<endpoint>?<query>. A leading slash
// on the endpoint is stripped; an empty query adds no "?" suffix.
func (a *Account) apiEndpoint(endpoint string, params url.Values, cfg *model.PlatformConfiguration, useBase bool) string {
	root := a.APIURL
	if useBase {
		root = a.BaseURL
	}
	endpoint = strings.TrimPrefix(endpoint, "/")
	version := defaultVersion
	if cfg != nil && cfg.AppVersion != "" {
		version = cfg.AppVersion
	}
	u := root + "/"
	if version != "" {
		u += version + "/"
	}
	u += endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// AuthRedirect builds the TikTok consent URL with a fresh state nonce and
// PKCE pair. The AuthState is handed back for the caller to store.
func (a *Account) AuthRedirect(platform *model.MediaPlatform) (string, *model.AuthState, error) {
	cfg := &platform.Configuration
	if cfg.ClientID == "" {
		return "", nil, &model.ConfigurationError{Platform: platform.Slug, Reason: "client key is not configured"}
	}

	state := utils.GenerateState()
	verifier := utils.GenerateCodeVerifier()

	q := url.Values{}
	q.Set("client_key", cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", platform.CallbackURL())
	q.Set("scope", authScope)
	q.Set("state", state)
	q.Set("code_challenge", utils.CodeChallengeS256(verifier))
	q.Set("code_challenge_method", "S256")

	authURL := a.apiEndpoint("auth/authorize/", q, cfg, true)
	authState := &model.AuthState{
		State:        state,
		CodeVerifier: verifier,
		PlatformSlug: platform.Slug,
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}
	return authURL, authState, nil
}

// ExchangeCode posts the callback code and PKCE verifier to the token
// endpoint as form data.
func (a *Account) ExchangeCode(ctx context.Context, code, codeVerifier string, platform *model.MediaPlatform) (*dto.TokenResponse, error) {
	cfg := &platform.Configuration

	form := url.Values{}
	form.Set("client_key", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", platform.CallbackURL())
	form.Set("code_verifier", codeVerifier)

	status, body, err := a.postForm(ctx, a.tokenEndpoint(cfg), form)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &model.AuthExchangeError{Platform: model.PlatformTikTok, StatusCode: status, Body: string(body)}
	}

	var tok dto.TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode tiktok token response: %w", err)
	}
	return &tok, nil
}

// RefreshAccessToken returns the raw refresh result; the caller inspects
// the status code instead of this raising on non-2xx.
func (a *Account) RefreshAccessToken(ctx context.Context, platform *model.MediaPlatform, refreshToken string) (*dto.TokenResult, error) {
	cfg := &platform.Configuration

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_key", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)

	status, body, err := a.postForm(ctx, a.tokenEndpoint(cfg), form)
	if err != nil {
		return nil, err
	}
	result := &dto.TokenResult{StatusCode: status, Body: body}
	if result.Successful() {
		var tok dto.TokenResponse
		if err := json.Unmarshal(body, &tok); err == nil {
			result.Token = &tok
		}
	}
	return result, nil
}

func (a *Account) tokenEndpoint(cfg *model.PlatformConfiguration) string {
	return a.apiEndpoint("oauth/token/", nil, cfg, false)
}

type userInfoParams struct {
	Fields string `url:"fields"`
}

// GetAccount fetches the authenticated user's basic profile.
func (a *Account) GetAccount(ctx context.Context, token string, platform *model.MediaPlatform) (*dto.ProfileResult, error) {
	params, _ := query.Values(userInfoParams{Fields: userInfoFields})
	endpoint := a.apiEndpoint("user/info/", params, &platform.Configuration, false)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return &dto.ProfileResult{StatusCode: resp.StatusCode, Body: body}, nil
}

// CompleteConnection resolves the profile behind a fresh token pair and
// persists the account through the account manager.
func (a *Account) CompleteConnection(ctx context.Context, tok *dto.TokenResponse, guard string, platform *model.MediaPlatform, accountType, connectionType string, existingID *int64) (*dto.SaveResult, error) {
	profile, err := a.GetAccount(ctx, tok.AccessToken, platform)
	if err != nil {
		return nil, err
	}
	if !profile.Successful() {
		return nil, &model.AccountLinkError{Platform: model.PlatformTikTok, Reason: string(profile.Body)}
	}

	var payload struct {
		Data struct {
			User struct {
				OpenID      string `json:"open_id"`
				UnionID     string `json:"union_id"`
				AvatarURL   string `json:"avatar_url"`
				DisplayName string `json:"display_name"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(profile.Body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode tiktok user info: %w", err)
	}
	user := payload.Data.User
	if user.OpenID == "" {
		return nil, &model.AccountLinkError{Platform: model.PlatformTikTok, Reason: "user info response is missing open_id"}
	}

	expiresIn := tok.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 86400
	}
	tokenExpiry := time.Now().Add(time.Duration(expiresIn) * time.Second)
	refreshExpiry := time.Now().AddDate(1, 0, 0)
	if tok.RefreshExpiresIn > 0 {
		refreshExpiry = time.Now().Add(time.Duration(tok.RefreshExpiresIn) * time.Second)
	}

	info := &dto.AccountInfo{
		AccountID:            user.OpenID,
		Name:                 user.DisplayName,
		Avatar:               user.AvatarURL,
		Link:                 "https://www.tiktok.com/@" + user.DisplayName,
		Token:                tok.AccessToken,
		TokenExpireAt:        &tokenExpiry,
		RefreshToken:         tok.RefreshToken,
		RefreshTokenExpireAt: &refreshExpiry,
	}
	return a.accounts.SaveAccount(ctx, guard, platform, info, accountType, connectionType, existingID)
}

// Send publishes one post. Every failure is converted into a result with a
// markup-stripped message; this never raises past its boundary.
func (a *Account) Send(ctx context.Context, post *model.SocialPost) *dto.PublishResult {
	result, err := a.send(ctx, post)
	if err != nil {
		return &dto.PublishResult{Status: false, Response: utils.StripTags(err.Error())}
	}
	return result
}

func (a *Account) send(ctx context.Context, post *model.SocialPost) (*dto.PublishResult, error) {
	account := post.Account
	if account == nil || account.Platform == nil {
		return nil, &model.ConfigurationError{Platform: model.PlatformTikTok, Reason: "post has no platform associated with its account"}
	}
	cfg := &account.Platform.Configuration

	caption := post.Content
	if caption == "" {
		caption = fmt.Sprintf("Video %d", time.Now().Unix())
	}
	if post.Link != nil && *post.Link != "" {
		caption += " " + *post.Link
	}
	caption = utils.TruncateWithEllipsis(caption, captionLimit)

	if post.File == nil {
		return nil, &model.MediaConstraintError{Reason: "TikTok requires a video file"}
	}
	fileURL, err := a.media.PublicURL(post.File)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(fileURL, "https://") {
		return nil, &model.MediaConstraintError{Reason: "TikTok requires an HTTPS URL for PULL_FROM_URL"}
	}
	if err := a.checkReachable(ctx, fileURL); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"post_info": map[string]interface{}{
			"title":                    caption,
			"privacy_level":            "PUBLIC_TO_EVERYONE", // audited apps only; unaudited apps must use SELF_ONLY
			"disable_comment":          false,
			"disable_duet":             false,
			"disable_stitch":           false,
			"video_cover_timestamp_ms": 1000,
		},
		"source_info": map[string]interface{}{
			"source":    "PULL_FROM_URL",
			"video_url": fileURL,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := a.apiEndpoint("post/publish/video/init/", nil, cfg, false)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+account.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	var parsed struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(respBody, &parsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && parsed.Data.PublishID != "" {
		return &dto.PublishResult{
			Status:    true,
			Response:  "Video posting initiated successfully",
			PublishID: parsed.Data.PublishID,
		}, nil
	}

	message := parsed.Error.Message
	if message == "" {
		message = "Failed to publish video"
	}
	return &dto.PublishResult{Status: false, Response: utils.StripTags(message)}, nil
}

// checkReachable fetches the first byte of the video URL; TikTok pulls the
// file itself, so an unreachable URL fails the publish before it starts.
func (a *Account) checkReachable(ctx context.Context, fileURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &model.MediaConstraintError{Reason: "Video URL is not publicly accessible: " + fileURL}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1))
	if resp.StatusCode >= 400 {
		return &model.MediaConstraintError{Reason: "Video URL is not publicly accessible: " + fileURL}
	}
	return nil
}

type videoListParams struct {
	Fields string `url:"fields"`
}

type tiktokVideo struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	VideoDescription string `json:"video_description"`
	CoverImageURL    string `json:"cover_image_url"`
	EmbedLink        string `json:"embed_link"`
	CreateTime       int64  `json:"create_time"`
	ViewCount        int64  `json:"view_count"`
	LikeCount        int64  `json:"like_count"`
	CommentCount     int64  `json:"comment_count"`
}

// AccountDetails lists the account's recent videos mapped to the
// normalized feed schema. A provider error envelope is treated as a stale
// token: the account is disconnected and the provider message returned.
func (a *Account) AccountDetails(ctx context.Context, account *model.SocialAccount) *dto.ActivityResult {
	result, err := a.accountDetails(ctx, account)
	if err != nil {
		return &dto.ActivityResult{Status: false, Message: utils.StripTags(err.Error())}
	}
	return result
}

func (a *Account) accountDetails(ctx context.Context, account *model.SocialAccount) (*dto.ActivityResult, error) {
	if account.Platform == nil {
		return nil, &model.ConfigurationError{Platform: model.PlatformTikTok, Reason: "account has no platform loaded"}
	}
	params, _ := query.Values(videoListParams{Fields: videoListFields})
	endpoint := a.apiEndpoint("/video/list/", params, &account.Platform.Configuration, false)

	body, err := json.Marshal(map[string]interface{}{
		"max_count": 20,
		"cursor":    "0",
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+account.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	var parsed struct {
		Data struct {
			Videos []tiktokVideo `json:"videos"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &model.ActivityFetchError{Platform: model.PlatformTikTok, Message: "failed to decode video list response"}
	}

	if parsed.Error != nil && parsed.Error.Code != "ok" {
		logger.GetLogger().
			WithField("account_id", account.ID).
			WithField("error_code", parsed.Error.Code).
			WithField("error_message", parsed.Error.Message).
			Warn("TikTok rejected video listing; disconnecting account")
		if err := a.accounts.DisconnectAccount(ctx, account); err != nil {
			logger.GetLogger().WithField("error", err).Error("Failed to disconnect account")
		}
		return &dto.ActivityResult{Status: false, Message: parsed.Error.Message}, nil
	}

	return &dto.ActivityResult{Status: true, Response: a.formatResponse(account, parsed.Data.Videos)}, nil
}

func (a *Account) formatResponse(account *model.SocialAccount, videos []tiktokVideo) *dto.FeedResponse {
	items := make([]dto.FeedItem, 0, len(videos))
	for _, v := range videos {
		message := v.VideoDescription
		if message == "" {
			message = v.Title
		}
		createdTime := v.CreateTime
		if createdTime == 0 {
			createdTime = time.Now().Unix()
		}
		permalink := v.EmbedLink
		if v.ID != "" {
			permalink = fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", account.Name, v.ID)
		}
		items = append(items, dto.FeedItem{
			FullPicture:  v.CoverImageURL,
			Message:      message,
			CreatedTime:  createdTime,
			Reactions:    dto.FeedReactions{Summary: dto.CountSummary{TotalCount: v.LikeCount}},
			Comments:     dto.FeedComments{Summary: dto.CountSummary{TotalCount: v.CommentCount}},
			Shares:       dto.FeedShares{Count: 0},
			Views:        &dto.FeedViews{Count: v.ViewCount},
			PermalinkURL: permalink,
			Privacy:      dto.FeedPrivacy{Value: "EVERYONE"},
			Type:         "video",
		})
	}
	return &dto.FeedResponse{Data: items}
}

func (a *Account) postForm(ctx context.Context, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body, nil
}
