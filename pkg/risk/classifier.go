/*
Copyright 2025 Jordi Gil.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package risk

import (
	"strings"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// euMemberCountryCodes is the fixed EU-member ISO 3166-1 alpha-2 set used
// to classify geographicRegion (spec.md §4.7). Italy is split out into its
// own region, as the pipeline's home jurisdiction.
var euMemberCountryCodes = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"HU": true, "IE": true, "LV": true, "LT": true, "LU": true, "MT": true,
	"NL": true, "PL": true, "PT": true, "RO": true, "SK": true, "SI": true,
	"ES": true, "SE": true,
}

// ClassifyRegion buckets countryCode into ITALY, EU_OTHER or NON_EUROPEAN.
func ClassifyRegion(countryCode string) domain.GeographicRegion {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	switch {
	case code == "IT":
		return domain.RegionItaly
	case euMemberCountryCodes[code]:
		return domain.RegionEUOther
	default:
		return domain.RegionNonEuropean
	}
}

// sectorKeywords maps fixed sector/productType substrings onto the
// dimension's five economic sector buckets (spec.md §4.7's "fixed
// mapping"). Keywords are tried in declaration order against sector and
// productType joined together; the first keyword found in either wins.
var sectorKeywords = []struct {
	keyword string
	sector  domain.EconomicSector
}{
	{"SOVEREIGN", domain.SectorSovereign},
	{"GOVERNMENT", domain.SectorSovereign},
	{"BANK", domain.SectorBanking},
	{"FINANCIAL", domain.SectorBanking},
	{"MORTGAGE", domain.SectorRetailMortgage},
	{"RETAIL", domain.SectorRetailMortgage},
	{"CORPORATE", domain.SectorCorporate},
	{"MANUFACTURING", domain.SectorCorporate},
}

// ClassifySector buckets an exposure's sector and productType fields into
// one of the five economic sector categories.
func ClassifySector(sector, productType string) domain.EconomicSector {
	haystack := strings.ToUpper(sector) + " " + strings.ToUpper(productType)
	for _, entry := range sectorKeywords {
		if strings.Contains(haystack, entry.keyword) {
			return entry.sector
		}
	}
	return domain.SectorOther
}
