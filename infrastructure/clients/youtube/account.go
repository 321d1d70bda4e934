package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
	"mx-social/infrastructure/utils"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2/google"
	youtubeapi "google.golang.org/api/youtube/v3"
)

const (
	apiURL         = "https://www.googleapis.com/youtube"
	uploadURL      = "https://www.googleapis.com/upload/youtube"
	defaultVersion = "v3"

	titleLimit       = 100
	descriptionLimit = 5000

	maxFeedItems = 20
)

var authScopes = []string{
	youtubeapi.YoutubeUploadScope,
	youtubeapi.YoutubeReadonlyScope,
}

// Account integrates one Google Cloud project with the YouTube Data API.
// Publishing uploads the video bytes directly as a multipart request.
type Account struct {
	// Overridable for tests.
	APIURL    string
	UploadURL string
	AuthURL   string
	TokenURL  string

	httpClient *http.Client
	accounts   repository.IAccountManager
	media      repository.IMediaResolver
}

func NewAccount(httpClient *http.Client, accounts repository.IAccountManager, media repository.IMediaResolver) *Account {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Account{
		APIURL:     apiURL,
		UploadURL:  uploadURL,
		AuthURL:    google.Endpoint.AuthURL,
		TokenURL:   google.Endpoint.TokenURL,
		httpClient: httpClient,
		accounts:   accounts,
		media:      media,
	}
}

// apiEndpoint builds <root>/<version>/<endpoint>?<query> against the data
// API root. A leading slash on the endpoint is stripped; an empty query
// adds no "?" suffix.
func (a *Account) apiEndpoint(endpoint string, params url.Values, cfg *model.PlatformConfiguration) string {
	return buildEndpoint(a.APIURL, endpoint, params, cfg)
}

func (a *Account) uploadEndpoint(endpoint string, params url.Values, cfg *model.PlatformConfiguration) string {
	return buildEndpoint(a.UploadURL, endpoint, params, cfg)
}

func buildEndpoint(root, endpoint string, params url.Values, cfg *model.PlatformConfiguration) string {
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

// AuthRedirect builds the Google consent URL. access_type=offline and
// prompt=consent force a refresh token on every connect.
func (a *Account) AuthRedirect(platform *model.MediaPlatform) (string, *model.AuthState, error) {
	cfg := &platform.Configuration
	if cfg.ClientID == "" {
		return "", nil, &model.ConfigurationError{Platform: platform.Slug, Reason: "client id is not configured"}
	}

	state := utils.GenerateState()
	verifier := utils.GenerateCodeVerifier()

	q := url.Values{}
	q.Set("client_id", cfg.ClientID)
	q.Set("redirect_uri", platform.CallbackURL())
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(authScopes, " "))
	q.Set("state", state)
	q.Set("code_challenge", utils.CodeChallengeS256(verifier))
	q.Set("code_challenge_method", "S256")
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")

	authState := &model.AuthState{
		State:        state,
		CodeVerifier: verifier,
		PlatformSlug: platform.Slug,
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}
	return a.AuthURL + "?" + q.Encode(), authState, nil
}

// ExchangeCode posts the callback code and PKCE verifier to Google's token
// endpoint as form data.
func (a *Account) ExchangeCode(ctx context.Context, code, codeVerifier string, platform *model.MediaPlatform) (*dto.TokenResponse, error) {
	cfg := &platform.Configuration

	form := url.Values{}
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", platform.CallbackURL())
	form.Set("code_verifier", codeVerifier)

	status, body, err := a.postForm(ctx, a.TokenURL, form)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &model.AuthExchangeError{Platform: model.PlatformYouTube, StatusCode: status, Body: string(body)}
	}

	var tok dto.TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode youtube token response: %w", err)
	}
	return &tok, nil
}

// RefreshAccessToken hits the same token endpoint with grant_type
// refresh_token and returns the raw result for the caller to inspect.
func (a *Account) RefreshAccessToken(ctx context.Context, platform *model.MediaPlatform, refreshToken string) (*dto.TokenResult, error) {
	cfg := &platform.Configuration

	form := url.Values{}
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	status, body, err := a.postForm(ctx, a.TokenURL, form)
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

type channelParams struct {
	Part string `url:"part"`
	Mine bool   `url:"mine"`
}

// GetAccount fetches the authenticated user's channel.
func (a *Account) GetAccount(ctx context.Context, token string, platform *model.MediaPlatform) (*dto.ProfileResult, error) {
	params, _ := query.Values(channelParams{Part: "snippet,contentDetails", Mine: true})
	status, body, err := a.getJSON(ctx, a.apiEndpoint("channels", params, &platform.Configuration), token)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResult{StatusCode: status, Body: body}, nil
}

type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			CustomURL  string `json:"customUrl"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CompleteConnection resolves the channel behind a fresh token pair and
// persists the account through the account manager.
func (a *Account) CompleteConnection(ctx context.Context, tok *dto.TokenResponse, guard string, platform *model.MediaPlatform, accountType, connectionType string, existingID *int64) (*dto.SaveResult, error) {
	profile, err := a.GetAccount(ctx, tok.AccessToken, platform)
	if err != nil {
		return nil, err
	}

	var payload channelListResponse
	if err := json.Unmarshal(profile.Body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode youtube channel response: %w", err)
	}
	if !profile.Successful() || len(payload.Items) == 0 {
		reason := "no channel found for the authenticated user"
		if payload.Error != nil && payload.Error.Message != "" {
			reason = payload.Error.Message
		}
		return nil, &model.AccountLinkError{Platform: model.PlatformYouTube, Reason: reason}
	}
	channel := payload.Items[0]

	expiresIn := tok.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	tokenExpiry := time.Now().Add(time.Duration(expiresIn) * time.Second)

	link := "https://www.youtube.com/channel/" + channel.ID
	if channel.Snippet.CustomURL != "" {
		link = "https://www.youtube.com/" + channel.Snippet.CustomURL
	}

	info := &dto.AccountInfo{
		AccountID:     channel.ID,
		Name:          channel.Snippet.Title,
		Avatar:        channel.Snippet.Thumbnails.Default.URL,
		Link:          link,
		Token:         tok.AccessToken,
		TokenExpireAt: &tokenExpiry,
		RefreshToken:  tok.RefreshToken,
	}
	return a.accounts.SaveAccount(ctx, guard, platform, info, accountType, connectionType, existingID)
}

// Send uploads one video. Every failure is converted into a result with a
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
		return nil, &model.ConfigurationError{Platform: model.PlatformYouTube, Reason: "post has no platform associated with its account"}
	}
	cfg := &account.Platform.Configuration

	text := post.Content
	if text == "" {
		text = fmt.Sprintf("Video %d", time.Now().Unix())
	}
	if post.Link != nil && *post.Link != "" {
		text += "\n" + *post.Link
	}
	title := utils.TruncateWithEllipsis(text, titleLimit)
	description := utils.TruncateWithEllipsis(text, descriptionLimit)

	if post.File == nil {
		return nil, &model.MediaConstraintError{Reason: "YouTube requires a video file"}
	}
	path, err := a.media.LocalPath(post.File)
	if err != nil {
		return nil, err
	}
	video, err := os.Open(path)
	if err != nil {
		return nil, &model.MediaConstraintError{Reason: "Video file is not readable: " + post.File.FileName}
	}
	defer video.Close()
	if err := checkMP4(video, post.File.MimeType); err != nil {
		return nil, err
	}

	metadata := map[string]interface{}{
		"snippet": map[string]interface{}{
			"title":       title,
			"description": description,
			"categoryId":  "22",
		},
		"status": map[string]interface{}{
			"privacyStatus":           "public",
			"selfDeclaredMadeForKids": false,
		},
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	body := &strings.Builder{}
	writer := multipart.NewWriter(body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Disposition", `form-data; name="metadata"`)
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, err
	}
	if _, err := metaPart.Write(metadataJSON); err != nil {
		return nil, err
	}

	videoHeader := textproto.MIMEHeader{}
	videoHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="video"; filename=%q`, filepath.Base(path)))
	videoHeader.Set("Content-Type", "video/mp4")
	videoPart, err := writer.CreatePart(videoHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(videoPart, video); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("part", "snippet,status")
	endpoint := a.uploadEndpoint("videos", params, cfg)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+account.Token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	var parsed struct {
		ID    string    `json:"id"`
		Error *apiError `json:"error"`
	}
	_ = json.Unmarshal(respBody, &parsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && parsed.ID != "" {
		videoURL := "https://www.youtube.com/watch?v=" + parsed.ID
		return &dto.PublishResult{
			Status:   true,
			Response: "Video posted successfully to YouTube",
			VideoID:  parsed.ID,
			URL:      &videoURL,
		}, nil
	}

	message := "Failed to upload video"
	if parsed.Error != nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	return &dto.PublishResult{Status: false, Response: utils.StripTags(message)}, nil
}

// checkMP4 sniffs the container before uploading anything. The declared
// mime type alone is not trusted since files arrive user-named.
func checkMP4(video *os.File, declared string) error {
	head := make([]byte, 512)
	n, err := video.Read(head)
	if err != nil && err != io.EOF {
		return err
	}
	if _, err := video.Seek(0, io.SeekStart); err != nil {
		return err
	}
	sniffed := http.DetectContentType(head[:n])
	if sniffed == "video/mp4" || declared == "video/mp4" {
		return nil
	}
	return &model.MediaConstraintError{Reason: "YouTube requires an MP4 video file"}
}

type playlistItemsParams struct {
	Part       string `url:"part"`
	PlaylistID string `url:"playlistId"`
	MaxResults int    `url:"maxResults"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			Thumbnails  struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
	Error *apiError `json:"error"`
}

type videoStats struct {
	views    int64
	likes    int64
	comments int64
}

// AccountDetails walks the uploads playlist of the account's channel and
// maps the entries to the normalized feed schema. A provider error is
// treated as a stale token: the account is disconnected and the provider
// message returned.
func (a *Account) AccountDetails(ctx context.Context, account *model.SocialAccount) *dto.ActivityResult {
	result, err := a.accountDetails(ctx, account)
	if err != nil {
		return &dto.ActivityResult{Status: false, Message: utils.StripTags(err.Error())}
	}
	return result
}

func (a *Account) accountDetails(ctx context.Context, account *model.SocialAccount) (*dto.ActivityResult, error) {
	if account.Platform == nil {
		return nil, &model.ConfigurationError{Platform: model.PlatformYouTube, Reason: "account has no platform loaded"}
	}
	cfg := &account.Platform.Configuration

	params, _ := query.Values(channelParams{Part: "contentDetails", Mine: true})
	status, body, err := a.getJSON(ctx, a.apiEndpoint("channels", params, cfg), account.Token)
	if err != nil {
		return nil, err
	}
	var channels channelListResponse
	_ = json.Unmarshal(body, &channels)
	if status < 200 || status >= 300 || len(channels.Items) == 0 {
		return a.disconnectWith(ctx, account, channels.Error, "Failed to fetch channel data"), nil
	}
	uploads := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploads == "" {
		return &dto.ActivityResult{Status: true, Response: &dto.FeedResponse{Data: []dto.FeedItem{}}}, nil
	}

	listParams, _ := query.Values(playlistItemsParams{Part: "snippet", PlaylistID: uploads, MaxResults: maxFeedItems})
	status, body, err = a.getJSON(ctx, a.apiEndpoint("playlistItems", listParams, cfg), account.Token)
	if err != nil {
		return nil, err
	}
	var playlist playlistItemsResponse
	_ = json.Unmarshal(body, &playlist)
	if status < 200 || status >= 300 {
		return a.disconnectWith(ctx, account, playlist.Error, "Failed to fetch uploaded videos"), nil
	}

	ids := make([]string, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		if id := item.Snippet.ResourceID.VideoID; id != "" {
			ids = append(ids, id)
		}
	}
	stats := a.fetchStatistics(ctx, account.Token, cfg, ids)

	items := make([]dto.FeedItem, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		id := item.Snippet.ResourceID.VideoID
		message := item.Snippet.Description
		if message == "" {
			message = item.Snippet.Title
		}
		s := stats[id]
		items = append(items, dto.FeedItem{
			FullPicture:  item.Snippet.Thumbnails.Default.URL,
			Message:      message,
			CreatedTime:  item.Snippet.PublishedAt,
			Reactions:    dto.FeedReactions{Summary: dto.CountSummary{TotalCount: s.likes}},
			Comments:     dto.FeedComments{Summary: dto.CountSummary{TotalCount: s.comments}},
			Shares:       dto.FeedShares{Count: 0},
			Views:        &dto.FeedViews{Count: s.views},
			PermalinkURL: "https://www.youtube.com/watch?v=" + id,
			Privacy:      dto.FeedPrivacy{Value: "EVERYONE"},
			Type:         "video",
		})
	}
	return &dto.ActivityResult{Status: true, Response: &dto.FeedResponse{Data: items}}, nil
}

func (a *Account) disconnectWith(ctx context.Context, account *model.SocialAccount, apiErr *apiError, fallback string) *dto.ActivityResult {
	message := fallback
	if apiErr != nil && apiErr.Message != "" {
		message = apiErr.Message
	}
	logger.GetLogger().
		WithField("account_id", account.ID).
		WithField("error_message", message).
		Warn("YouTube rejected activity listing; disconnecting account")
	if err := a.accounts.DisconnectAccount(ctx, account); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to disconnect account")
	}
	return &dto.ActivityResult{Status: false, Message: message}
}

type videosParams struct {
	Part string `url:"part"`
	ID   string `url:"id"`
}

// fetchStatistics is best effort; a failed stats call leaves counters at
// zero rather than failing the whole listing.
func (a *Account) fetchStatistics(ctx context.Context, token string, cfg *model.PlatformConfiguration, ids []string) map[string]videoStats {
	stats := make(map[string]videoStats, len(ids))
	if len(ids) == 0 {
		return stats
	}

	params, _ := query.Values(videosParams{Part: "statistics", ID: strings.Join(ids, ",")})
	status, body, err := a.getJSON(ctx, a.apiEndpoint("videos", params, cfg), token)
	if err != nil || status < 200 || status >= 300 {
		logger.GetLogger().WithField("error", err).Warn("Failed to fetch video statistics")
		return stats
	}

	var parsed struct {
		Items []struct {
			ID         string `json:"id"`
			Statistics struct {
				ViewCount    string `json:"viewCount"`
				LikeCount    string `json:"likeCount"`
				CommentCount string `json:"commentCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return stats
	}
	for _, item := range parsed.Items {
		stats[item.ID] = videoStats{
			views:    parseCount(item.Statistics.ViewCount),
			likes:    parseCount(item.Statistics.LikeCount),
			comments: parseCount(item.Statistics.CommentCount),
		}
	}
	return stats
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func (a *Account) getJSON(ctx context.Context, endpoint, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body, nil
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
