package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"foodmemories/internal/storage"
)

// UploadsPrefix is where stored photos are served from.
const UploadsPrefix = "/uploads"

// ServeUploads serves stored photos read-only. A local store is served straight
// from its root directory with directory browsing; other stores are streamed.
func ServeUploads(store storage.Storage, log *slog.Logger) fiber.Handler {
	if local, ok := store.(*storage.LocalStorage); ok {
		return filesystem.New(filesystem.Config{
			Root:   http.Dir(local.Root()),
			Browse: true,
			// Temp files of in-flight uploads are never served.
			Next: func(c *fiber.Ctx) bool {
				return strings.Contains(c.Path(), "/.")
			},
		})
	}
	return streamObjects(store, log)
}

func streamObjects(store storage.Storage, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
			return c.Next()
		}
		rel, err := url.PathUnescape(strings.TrimPrefix(c.Path(), UploadsPrefix))
		if err != nil {
			return fiber.ErrNotFound
		}
		key := strings.TrimPrefix(rel, "/")

		if key == "" || strings.HasSuffix(key, "/") {
			lister, ok := store.(storage.Lister)
			if !ok {
				return fiber.ErrNotFound
			}
			return listObjects(c, lister, key, log)
		}

		rc, info, err := store.Get(c.UserContext(), key)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
				return fiber.ErrNotFound
			}
			return err
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		return c.SendStream(rc, int(info.Size))
	}
}

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1><ul>
{{if .Parent}}<li><a href="{{.Parent}}">..</a></li>{{end}}
{{range .Entries}}<li><a href="{{.Href}}">{{.Name}}</a></li>
{{end}}</ul></body></html>`))

type listingEntry struct {
	Name string
	Href string
}

func listObjects(c *fiber.Ctx, lister storage.Lister, prefix string, log *slog.Logger) error {
	objects, err := lister.List(c.UserContext(), prefix)
	if err != nil {
		return err
	}
	if len(objects) == 0 && prefix != "" {
		return fiber.ErrNotFound
	}

	data := struct {
		Title   string
		Parent  string
		Entries []listingEntry
	}{Title: UploadsPrefix + "/" + prefix}
	if prefix != "" {
		data.Parent = path.Dir(path.Join(UploadsPrefix, prefix)) + "/"
	}
	for _, o := range objects {
		name := strings.TrimPrefix(o.Key, prefix)
		if name == "" {
			continue
		}
		data.Entries = append(data.Entries, listingEntry{Name: name, Href: path.Join(UploadsPrefix, o.Key) + dirSuffix(o.IsDir)})
	}

	c.Type("html")
	if err := listingTemplate.Execute(c.Response().BodyWriter(), data); err != nil {
		log.Error("uploads_listing_failed", slog.String("prefix", prefix), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func dirSuffix(isDir bool) string {
	if isDir {
		return "/"
	}
	return ""
}
