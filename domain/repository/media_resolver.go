package repository

import "mx-social/domain/model"

// IMediaResolver turns a post attachment into whatever a platform needs:
// a publicly reachable URL (pull-based providers) or a local filesystem
// path (upload-based providers).
type IMediaResolver interface {
	PublicURL(file *model.PostFile) (string, error)
	LocalPath(file *model.PostFile) (string, error)
}
