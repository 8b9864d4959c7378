package algo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"tariff-map-system/model"
)

// AnchorsFromGeoJSON 从世界国家 GeoJSON 中推导国家条目，锚点取多边形质心 (平面近似)
// 用来给人工参考数据里没覆盖到的国家补充锚点，让地图上所有国家都能作为路线端点
// ISO3 取不到或为占位值 "-99" 的要素会被跳过
func AnchorsFromGeoJSON(data []byte) ([]model.Country, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("解析 GeoJSON 失败: %w", err)
	}

	var countries []model.Country
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}

		iso3 := featureISO3(f)
		if iso3 == "" {
			continue
		}

		centroid, _ := planar.CentroidArea(f.Geometry)
		countries = append(countries, model.Country{
			ISO3: iso3,
			Name: featureName(f),
			Lon:  centroid[0],
			Lat:  centroid[1],
		})
	}
	return countries, nil
}

// AnchorsFromGeoJSONFile 读取 GeoJSON 文件并推导国家条目
func AnchorsFromGeoJSONFile(filepath string) ([]model.Country, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return AnchorsFromGeoJSON(data)
}

// featureISO3 依次尝试 Natural Earth 数据集常见的几个属性键
func featureISO3(f *geojson.Feature) string {
	for _, key := range []string{"ISO_A3", "ADM0_A3", "iso_a3"} {
		v := f.Properties.MustString(key, "")
		if v != "" && v != "-99" {
			return normalizeISO3(v)
		}
	}
	return ""
}

func featureName(f *geojson.Feature) string {
	for _, key := range []string{"ADMIN", "NAME", "name"} {
		if v := f.Properties.MustString(key, ""); v != "" {
			return v
		}
	}
	return ""
}
