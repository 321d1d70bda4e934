package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mx-social/domain/model"
	"mx-social/domain/repository"
)

// DiskResolver serves post attachments from a local directory. PublicURL
// requires a configured HTTPS base since pull-based providers fetch the
// file themselves.
type DiskResolver struct {
	dir           string
	publicBaseURL string
}

func NewDiskResolver(dir, publicBaseURL string) repository.IMediaResolver {
	return &DiskResolver{dir: dir, publicBaseURL: strings.TrimSuffix(publicBaseURL, "/")}
}

func (r *DiskResolver) PublicURL(file *model.PostFile) (string, error) {
	if file == nil || file.FileName == "" {
		return "", fmt.Errorf("post has no attachment")
	}
	if r.publicBaseURL == "" {
		return "", fmt.Errorf("media public base URL is not configured")
	}
	return r.publicBaseURL + "/" + file.FileName, nil
}

func (r *DiskResolver) LocalPath(file *model.PostFile) (string, error) {
	if file == nil || file.FileName == "" {
		return "", fmt.Errorf("post has no attachment")
	}
	// Reject traversal in user supplied names
	name := filepath.Base(file.FileName)
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("attachment %s is not on disk: %w", name, err)
	}
	return path, nil
}
