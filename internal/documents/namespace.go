package documents

import (
	"fmt"
	"strings"
	"time"

	"healthdocs-backend/internal/shared/util"
)

// Namespace scopes records and blobs to one application and user.
type Namespace struct {
	AppID  string
	UserID string
}

// base keys the user segment on a hash of the exact id so that ids which
// sanitize alike stay apart.
func (n Namespace) base() string {
	return "artifacts/" + util.SanitizePathSegment(n.AppID) + "/users/" + util.HashUserKey(n.UserID)
}

// CollectionPath is the record collection for the namespace.
func (n Namespace) CollectionPath() string {
	return n.base() + "/documents"
}

// BlobPrefix is the key prefix for original uploads in the namespace.
func (n Namespace) BlobPrefix() string {
	return n.base() + "/original_documents"
}

// BlobKey builds {prefix}/{user}_{yyyymmddhhmmss}_{suffix}{ext}.
func (n Namespace) BlobKey(at time.Time, suffix, fileName string) string {
	return fmt.Sprintf("%s/%s_%s_%s%s",
		n.BlobPrefix(),
		util.SanitizePathSegment(n.UserID),
		at.UTC().Format("20060102150405"),
		suffix,
		util.SafeExtension(fileName),
	)
}

// OwnsLocator reports whether locator points inside the namespace blob prefix.
func (n Namespace) OwnsLocator(locator string) bool {
	return strings.HasPrefix(locator, n.BlobPrefix()+"/")
}
