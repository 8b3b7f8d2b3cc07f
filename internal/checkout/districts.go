package checkout

import "slices"

const DefaultCity = "Kigali"

var districtOrder = []string{"Gasabo", "Kicukiro", "Nyarugenge"}

var sectorsByDistrict = map[string][]string{
	"Gasabo":     {"Bumbogo", "Gatsata", "Jali", "Gikomero", "Gisozi", "Jabana", "Kinyinya", "Ndera", "Nduba", "Remera", "Rusororo", "Rutunga"},
	"Kicukiro":   {"Gahanga", "Gatenga", "Gikondo", "Kagarama", "Kanombe", "Kicukiro", "Kigarama", "Masaka", "Niboye", "Nyarugunga"},
	"Nyarugenge": {"Gitega", "Kanyinya", "Kigali", "Kimisagara", "Mageragere", "Muhima", "Nyakabanda", "Nyamirambo", "Nyarugenge", "Rwezamenyo"},
}

// Districts lists the delivery districts in display order.
func Districts() []string {
	return slices.Clone(districtOrder)
}

// Sectors returns nil for an unknown district.
func Sectors(district string) []string {
	return slices.Clone(sectorsByDistrict[district])
}

func KnownDistrict(district string) bool {
	_, ok := sectorsByDistrict[district]
	return ok
}

func SectorInDistrict(district, sector string) bool {
	return slices.Contains(sectorsByDistrict[district], sector)
}
