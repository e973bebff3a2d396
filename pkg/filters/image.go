package filters

import (
	"strconv"
	"strings"
)

func buildImage(name string, cfg Config, env *Env) (applyFunc, error) {
	resize := strings.TrimSpace(cfg.Get("iiif_resize"))
	if resize != "" {
		pct, err := strconv.ParseFloat(resize, 64)
		if err != nil || pct <= 0 || pct > 100 {
			return nil, configError(name, "iiif_resize", "expected a percentage between 1 and 100, got %q", resize)
		}
	}
	region := strings.ToLower(strings.TrimSpace(cfg.Get("iiif_region")))
	if region != "" && region != "full" && region != "square" {
		return nil, configError(name, "iiif_region", "must be full or square, got %q", cfg.Get("iiif_region"))
	}

	return func(in Input) (string, bool, error) {
		src := Stringify(in.Value)
		if cfg.Has("url") {
			src = ExpandPlaceholders(cfg.Get("url"), env.data(), map[string]string{"value": src})
		}
		if src != "" && (resize != "" || region != "") {
			src = rewriteIIIF(src, region, resize)
		}

		img := newElement("img").set("src", src)
		if cfg.Has("class") {
			img.addClass(cfg.Get("class"))
		} else {
			img.addClass("img-fluid")
		}
		img.set("alt", cfg.GetOr("alt", "Image"))
		img.setIf("width", cfg.Get("width"))
		img.setIf("height", cfg.Get("height"))
		img.setIf("style", cfg.Get("style"))
		img.setIf("title", cfg.Get("title"))
		return img.String(), true, nil
	}, nil
}

// rewriteIIIF rewrites the region and size segments of an IIIF image API URL
// ({base}/{region}/{size}/{rotation}/{quality}.{format}). URLs that do not
// end in an image request are returned unchanged.
func rewriteIIIF(src, region, resize string) string {
	query := ""
	if idx := strings.IndexAny(src, "?#"); idx >= 0 {
		src, query = src[:idx], src[idx:]
	}
	segments := strings.Split(src, "/")
	if len(segments) < 5 {
		return src + query
	}
	n := len(segments)
	if !strings.Contains(segments[n-1], ".") {
		return src + query
	}
	if region != "" {
		segments[n-4] = region
	}
	if resize != "" {
		segments[n-3] = "pct:" + resize
	}
	return strings.Join(segments, "/") + query
}
