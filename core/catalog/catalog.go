// ABOUTME: Endpoint catalog maps logical operation names to HTTP method, path and retry safety
// ABOUTME: Immutable after construction so it can be shared by every concurrent call

package catalog

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	qerrors "github.com/richochetclementine1315/Quill/core/errors"
)

// Encoding selects how request parameters are serialized
type Encoding int

const (
	// EncodingQuery sends no body; parameters travel in the query string
	EncodingQuery Encoding = iota
	// EncodingJSON sends a JSON body
	EncodingJSON
	// EncodingMultipart sends a multipart/form-data body
	EncodingMultipart
)

// String returns the encoding name
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingMultipart:
		return "multipart"
	default:
		return "query"
	}
}

// Logical operation names of the Quill API
const (
	Register    = "register"
	Login       = "login"
	ListPosts   = "list_posts"
	GetPost     = "get_post"
	CreatePost  = "create_post"
	UpdatePost  = "update_post"
	DeletePost  = "delete_post"
	UniquePosts = "unique_posts"
	UploadImage = "upload_image"
)

// Descriptor describes one logical operation
type Descriptor struct {
	Name       string
	Method     string
	Path       string
	Idempotent bool
	Encoding   Encoding

	// Cacheable marks public reads whose bodies do not depend on the session
	Cacheable bool
}

// Expand substitutes {name} placeholders in the path template.
func (d Descriptor) Expand(params map[string]string) (string, error) {
	path := d.Path
	for {
		start := strings.IndexByte(path, '{')
		if start < 0 {
			return path, nil
		}
		end := strings.IndexByte(path[start:], '}')
		if end < 0 {
			return "", qerrors.New(qerrors.KindInvalidRequest, d.Name, "unterminated placeholder in path template")
		}
		end += start
		key := path[start+1 : end]
		value, ok := params[key]
		if !ok || value == "" {
			return "", qerrors.New(qerrors.KindInvalidRequest, d.Name, fmt.Sprintf("missing path parameter %q", key))
		}
		path = path[:start] + url.PathEscape(value) + path[end+1:]
	}
}

// Catalog is a read-only set of descriptors keyed by name
type Catalog struct {
	endpoints map[string]Descriptor
}

// New builds a catalog. Duplicate names are a programming error and panic.
func New(descriptors ...Descriptor) *Catalog {
	endpoints := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		if _, dup := endpoints[d.Name]; dup {
			panic(fmt.Sprintf("catalog: duplicate endpoint %q", d.Name))
		}
		endpoints[d.Name] = d
	}
	return &Catalog{endpoints: endpoints}
}

// Resolve returns the descriptor for a logical name
func (c *Catalog) Resolve(name string) (Descriptor, error) {
	d, ok := c.endpoints[name]
	if !ok {
		return Descriptor{}, qerrors.New(qerrors.KindUnknownEndpoint, name, "endpoint is not registered")
	}
	return d, nil
}

// Names lists the registered operation names in sorted order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.endpoints))
	for name := range c.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultCatalog = New(
	Descriptor{Name: Register, Method: http.MethodPost, Path: "/register", Encoding: EncodingJSON},
	Descriptor{Name: Login, Method: http.MethodPost, Path: "/login", Encoding: EncodingJSON},
	Descriptor{Name: ListPosts, Method: http.MethodGet, Path: "/allpost", Idempotent: true, Cacheable: true},
	Descriptor{Name: GetPost, Method: http.MethodGet, Path: "/allpost/{id}", Idempotent: true, Cacheable: true},
	Descriptor{Name: CreatePost, Method: http.MethodPost, Path: "/post", Encoding: EncodingJSON},
	Descriptor{Name: UpdatePost, Method: http.MethodPut, Path: "/updatepost/{id}", Idempotent: true, Encoding: EncodingJSON},
	Descriptor{Name: DeletePost, Method: http.MethodDelete, Path: "/deletepost/{id}", Idempotent: true},
	Descriptor{Name: UniquePosts, Method: http.MethodGet, Path: "/uniquepost", Idempotent: true},
	Descriptor{Name: UploadImage, Method: http.MethodPost, Path: "/upload-image", Encoding: EncodingMultipart},
)

// Default returns the Quill API catalog
func Default() *Catalog {
	return defaultCatalog
}
