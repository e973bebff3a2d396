package filters

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/goliatone/go-richtext/pkg/datapath"
)

// legendPalette colours marker groups in order of first appearance.
var legendPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

type mapPoint struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
	Group string  `json:"group,omitempty"`
	Color string  `json:"color,omitempty"`
}

func buildMap(name string, cfg Config, _ *Env) (applyFunc, error) {
	zoom, err := cfg.intOption(name, "zoom", 13, 0, 22)
	if err != nil {
		return nil, err
	}
	height := strings.TrimSpace(cfg.GetOr("height", "400"))
	if _, err := strconv.Atoi(height); err == nil {
		height += "px"
	}
	opts := mapOptions{points: cfg.Get("points"), group: cfg.Get("group"), label: cfg.Get("label")}

	return func(in Input) (string, bool, error) {
		points := collectPoints(in.Value, opts)
		if len(points) == 0 {
			return "", false, nil
		}
		legend := colorGroups(points)

		encoded, err := json.Marshal(points)
		if err != nil {
			return "", false, failed(name, "encode points: %v", err)
		}
		lat, lng := centroid(points)
		sum := fnv.New32a()
		_, _ = sum.Write(encoded)

		container := newElement("div").
			addClass("ndr-map", cfg.Get("class")).
			set("id", fmt.Sprintf("map-%08x", sum.Sum32())).
			set("style", "height: "+height+";").
			set("data-zoom", strconv.Itoa(zoom)).
			set("data-center", fmt.Sprintf("[%s,%s]", formatFloat(lat), formatFloat(lng))).
			set("data-points", string(encoded))
		if len(points) > 1 {
			container.set("data-bounds", bounds(points))
		}

		out := container.String()
		if len(legend) > 0 {
			list := newElement("ul").addClass("map-legend", "list-inline")
			for _, entry := range legend {
				swatch := newElement("span").addClass("legend-swatch").set("style", "background-color: "+entry.color+";")
				list.raw(newElement("li").addClass("list-inline-item").raw(swatch.String()).text(" " + entry.group).String())
			}
			out += list.String()
		}
		return out, true, nil
	}, nil
}

type mapOptions struct {
	points string
	group  string
	label  string
}

// collectPoints accepts flat {lat,lng}/{latitude,longitude} mappings, GeoJSON
// points and mappings holding a collection of either under opts.points.
func collectPoints(value any, opts mapOptions) []mapPoint {
	var out []mapPoint
	for _, item := range asList(value) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		group := subString(m, opts.group)
		label := subString(m, opts.label)
		if opts.points != "" {
			nested, err := datapath.Lookup(m, opts.points)
			if err != nil {
				continue
			}
			for _, p := range collectPoints(nested, mapOptions{label: opts.label}) {
				if p.Group == "" {
					p.Group = group
				}
				if p.Label == "" {
					p.Label = label
				}
				out = append(out, p)
			}
			continue
		}
		if point, ok := pointOf(m); ok {
			point.Label = label
			point.Group = group
			out = append(out, point)
		}
	}
	return out
}

func pointOf(m map[string]any) (mapPoint, bool) {
	if coords, ok := m["coordinates"].([]any); ok && strings.EqualFold(Stringify(m["type"]), "point") && len(coords) >= 2 {
		lng, okLng := toFloat(coords[0])
		lat, okLat := toFloat(coords[1])
		if okLat && okLng {
			return mapPoint{Lat: lat, Lng: lng}, validCoordinate(lat, lng)
		}
		return mapPoint{}, false
	}
	if geometry, ok := m["geometry"].(map[string]any); ok {
		return pointOf(geometry)
	}
	for _, keys := range [][2]string{{"lat", "lng"}, {"lat", "lon"}, {"latitude", "longitude"}} {
		latValue, hasLat := m[keys[0]]
		lngValue, hasLng := m[keys[1]]
		if !hasLat || !hasLng {
			continue
		}
		lat, okLat := toFloat(latValue)
		lng, okLng := toFloat(lngValue)
		if okLat && okLng && validCoordinate(lat, lng) {
			return mapPoint{Lat: lat, Lng: lng}, true
		}
	}
	return mapPoint{}, false
}

func validCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func subString(m map[string]any, path string) string {
	if path == "" {
		return ""
	}
	v, err := datapath.First(m, path)
	if err != nil {
		return ""
	}
	return Stringify(v)
}

type legendEntry struct {
	group string
	color string
}

func colorGroups(points []mapPoint) []legendEntry {
	var legend []legendEntry
	index := map[string]int{}
	for i := range points {
		group := points[i].Group
		if group == "" {
			continue
		}
		idx, ok := index[group]
		if !ok {
			idx = len(legend)
			index[group] = idx
			legend = append(legend, legendEntry{group: group, color: legendPalette[idx%len(legendPalette)]})
		}
		points[i].Color = legend[idx].color
	}
	return legend
}

func centroid(points []mapPoint) (float64, float64) {
	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return lat / n, lng / n
}

func bounds(points []mapPoint) string {
	minLat, maxLat := points[0].Lat, points[0].Lat
	minLng, maxLng := points[0].Lng, points[0].Lng
	for _, p := range points[1:] {
		minLat = min(minLat, p.Lat)
		maxLat = max(maxLat, p.Lat)
		minLng = min(minLng, p.Lng)
		maxLng = max(maxLng, p.Lng)
	}
	return fmt.Sprintf("[[%s,%s],[%s,%s]]", formatFloat(minLat), formatFloat(minLng), formatFloat(maxLat), formatFloat(maxLng))
}
