// Package download resolves "download CV" requests to the static PDF assets.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/sramirezortega/cv/internal/fault"
	"github.com/sramirezortega/cv/internal/locale"
)

// Asset is one downloadable CV file.
type Asset struct {
	Lang     language.Tag
	FileName string
}

// Plan is what the client should do to download an asset.
type Plan struct {
	Asset
	Href string
	// Available is false when the existence check failed. The download is
	// attempted anyway.
	Available bool
}

// Registry maps the language whitelist onto asset files in one directory.
type Registry struct {
	dir     string
	baseURL string
	assets  map[string]Asset
	logger  *slog.Logger
}

// NewRegistry returns a registry serving files from dir under baseURL.
// files maps a language to a file name relative to dir.
func NewRegistry(dir, baseURL string, files map[language.Tag]string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		assets:  make(map[string]Asset, len(files)),
		logger:  logger,
	}
	for tag, name := range files {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r.assets[locale.Key(tag)] = Asset{Lang: tag, FileName: name}
	}
	return r
}

// Prepare validates language against the whitelist and returns the download
// plan. An unsupported language is an InvalidParameter fault. A missing file is
// logged as AssetUnavailable but still yields a plan.
func (r *Registry) Prepare(ctx context.Context, lang string) (Plan, error) {
	tag, ok := locale.Parse(lang)
	if !ok {
		return Plan{}, fault.New(fault.InvalidParameter, "no CV for language %q", lang)
	}
	asset, ok := r.assets[locale.Key(tag)]
	if !ok {
		return Plan{}, fault.New(fault.MissingElement, "no CV file configured for %s", locale.Name(tag))
	}

	plan := Plan{
		Asset:     asset,
		Href:      r.baseURL + "/" + url.PathEscape(asset.FileName),
		Available: true,
	}
	if err := r.check(ctx, asset); err != nil {
		plan.Available = false
		r.logger.Warn("CV asset check failed, downloading anyway",
			slog.String("file", asset.FileName),
			slog.String("fault", string(fault.AssetUnavailable)),
			slog.Any("error", err),
		)
	}
	return plan, nil
}

// Lookup finds the asset served under fileName.
func (r *Registry) Lookup(fileName string) (Asset, bool) {
	for _, a := range r.assets {
		if a.FileName == fileName {
			return a, true
		}
	}
	return Asset{}, false
}

// Path returns the file system path of a.
func (r *Registry) Path(a Asset) string {
	return filepath.Join(r.dir, filepath.FromSlash(path.Clean("/" + a.FileName)))
}

// Assets lists the configured assets, default language first.
func (r *Registry) Assets() []Asset {
	var out []Asset
	for _, tag := range locale.Supported() {
		if a, ok := r.assets[locale.Key(tag)]; ok {
			out = append(out, a)
		}
	}
	return out
}

func (r *Registry) check(ctx context.Context, a Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(r.Path(a))
	if err != nil {
		return fault.Wrap(fault.AssetUnavailable, err, "stat %s", a.FileName)
	}
	if info.IsDir() {
		return fault.New(fault.AssetUnavailable, "%s is a directory", a.FileName)
	}
	return nil
}

// String helps log lines.
func (p Plan) String() string {
	return fmt.Sprintf("%s -> %s", locale.Name(p.Lang), p.Href)
}
