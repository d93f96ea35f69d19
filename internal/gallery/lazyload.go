package gallery

import (
	"fmt"

	"pagekit/internal/dom"

	"golang.org/x/net/html"
)

// LazyLoadConfig configures deferred image loading.
type LazyLoadConfig struct {
	Selector   string `yaml:"selector" json:"selector"`
	Threshold  int    `yaml:"threshold" json:"threshold"`
	DataSrc    string `yaml:"data_src" json:"data_src"`
	ErrorImage string `yaml:"error_image" json:"error_image"`
}

// DefaultLazyLoadConfig returns the default lazy load settings.
func DefaultLazyLoadConfig() LazyLoadConfig {
	return LazyLoadConfig{Selector: "img", Threshold: 0, DataSrc: "lazy-src"}
}

// LoaderOptions are handed to the Loader.
type LoaderOptions struct {
	ElementsSelector string
	Threshold        int
	DataSrc          string
	OnError          func(img *html.Node)
}

// Loader performs lazy loading on the host.
type Loader interface {
	Load(opts LoaderOptions)
}

// StartLazyLoad starts loader with cfg. Images that fail to load get
// cfg.ErrorImage as their src.
func StartLazyLoad(loader Loader, cfg LazyLoadConfig) LoaderOptions {
	opts := LoaderOptions{
		ElementsSelector: cfg.Selector,
		Threshold:        cfg.Threshold,
		DataSrc:          cfg.DataSrc,
		OnError: func(img *html.Node) {
			dom.SetAttr(img, "src", cfg.ErrorImage)
		},
	}
	if loader != nil {
		loader.Load(opts)
	}
	return opts
}

// DocumentLoader loads every matching image in a parsed document at once by
// copying its data source into src. Check, when set, validates each source;
// a failing source triggers the error callback.
type DocumentLoader struct {
	Root  *html.Node
	Check func(src string) error

	Loaded int
	Failed int
	Err    error
}

func (l *DocumentLoader) Load(opts LoaderOptions) {
	images, err := dom.QueryAll(l.Root, opts.ElementsSelector)
	if err != nil {
		l.Err = fmt.Errorf("lazy load: %w", err)
		return
	}
	for _, img := range images {
		src, ok := dom.Attr(img, "data-"+opts.DataSrc)
		if !ok {
			continue
		}
		if l.Check != nil {
			if err := l.Check(src); err != nil {
				l.Failed++
				if opts.OnError != nil {
					opts.OnError(img)
				}
				continue
			}
		}
		dom.SetAttr(img, "src", src)
		l.Loaded++
	}
}
