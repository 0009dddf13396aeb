package geo

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"gridmap/internal/raster"
)

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlPlacemark struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name"`
	Point *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
	Data []kmlData `xml:"ExtendedData>Data"`
}

// ParseKMLPoints extracts Placemark points from a KML document, at any
// folder depth. Coordinates are "lon,lat[,alt]"; altitude is ignored. An
// ExtendedData entry named like a magnitude column sets the magnitude.
func ParseKMLPoints(r io.Reader) ([]raster.Point, error) {
	var pts []raster.Point
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, err
		}
		if pm.Point == nil {
			continue
		}
		base := raster.Point{ID: pm.ID, Name: strings.TrimSpace(pm.Name), Magnitude: pm.magnitude()}
		for _, tuple := range strings.Fields(pm.Point.Coordinates) {
			vals := strings.Split(tuple, ",")
			if len(vals) < 2 {
				continue
			}
			lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
			lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
			if err1 != nil || err2 != nil {
				continue
			}
			p := base
			p.Lat, p.Lon = lat, lon
			pts = append(pts, p)
		}
	}
	if len(pts) == 0 {
		return nil, errors.New("kml: no points found")
	}
	return pts, nil
}

func (pm kmlPlacemark) magnitude() float64 {
	for _, key := range magnitudeKeys {
		for _, d := range pm.Data {
			if !strings.EqualFold(d.Name, key) {
				continue
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(d.Value), 64); err == nil {
				return f
			}
		}
	}
	return 1
}

// LoadKMLPoints reads placemark points from a KML file.
func LoadKMLPoints(path string) ([]raster.Point, error) {
	var pts []raster.Point
	err := withReader(path, func(r io.Reader) (err error) {
		pts, err = ParseKMLPoints(r)
		return err
	})
	return pts, err
}
