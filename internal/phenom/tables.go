package phenom

// Static identity tables. These are data, not logic: each entry links one
// wire identity to one CF-style name and unit. Lookups over them never
// fail hard; unknown keys simply return not-found.

// Grib2Key is the edition-2 wire identity.
type Grib2Key struct {
	Discipline int
	Category   int
	Number     int
}

// Grib1Key is the edition-1 wire identity.
type Grib1Key struct {
	Table2Version int
	Centre        int
	Number        int
}

// CFName is the semantic side of the mapping.
type CFName struct {
	StandardName string
	LongName     string
	Units        string
}

var grib2ToCF = map[Grib2Key]CFName{
	{0, 0, 0}:  {StandardName: "air_temperature", Units: "K"},
	{0, 0, 2}:  {StandardName: "air_potential_temperature", Units: "K"},
	{0, 0, 6}:  {StandardName: "dew_point_temperature", Units: "K"},
	{0, 0, 10}: {LongName: "latent_heat_flux", Units: "W m-2"},
	{0, 0, 17}: {StandardName: "surface_temperature", Units: "K"},
	{0, 1, 0}:  {StandardName: "specific_humidity", Units: "kg kg-1"},
	{0, 1, 1}:  {StandardName: "relative_humidity", Units: "%"},
	{0, 1, 3}:  {LongName: "precipitable_water", Units: "kg m-2"},
	{0, 1, 7}:  {StandardName: "precipitation_flux", Units: "kg m-2 s-1"},
	{0, 1, 11}: {StandardName: "thickness_of_snowfall_amount", Units: "m"},
	{0, 1, 13}: {StandardName: "liquid_water_content_of_surface_snow", Units: "kg m-2"},
	{0, 1, 22}: {StandardName: "cloud_area_fraction_in_atmosphere_layer", Units: "%"},
	{0, 1, 49}: {StandardName: "precipitation_amount", Units: "kg m-2"},
	{0, 1, 64}: {StandardName: "atmosphere_mass_content_of_water_vapor", Units: "kg m-2"},
	{0, 2, 0}:  {StandardName: "wind_from_direction", Units: "degrees"},
	{0, 2, 1}:  {StandardName: "wind_speed", Units: "m s-1"},
	{0, 2, 2}:  {StandardName: "x_wind", Units: "m s-1"},
	{0, 2, 3}:  {StandardName: "y_wind", Units: "m s-1"},
	{0, 2, 8}:  {StandardName: "lagrangian_tendency_of_air_pressure", Units: "Pa s-1"},
	{0, 2, 10}: {StandardName: "atmosphere_absolute_vorticity", Units: "s-1"},
	{0, 2, 14}: {StandardName: "ertel_potential_vorticity", Units: "K m2 kg-1 s-1"},
	{0, 2, 22}: {StandardName: "wind_speed_of_gust", Units: "m s-1"},
	{0, 3, 0}:  {StandardName: "air_pressure", Units: "Pa"},
	{0, 3, 1}:  {StandardName: "air_pressure_at_sea_level", Units: "Pa"},
	{0, 3, 3}:  {LongName: "icao_standard_atmosphere_reference_height", Units: "m"},
	{0, 3, 4}:  {StandardName: "geopotential", Units: "m2 s-2"},
	{0, 3, 5}:  {StandardName: "geopotential_height", Units: "m"},
	{0, 3, 9}:  {StandardName: "geopotential_height_anomaly", Units: "m"},
	{0, 4, 7}:  {StandardName: "surface_downwelling_shortwave_flux_in_air", Units: "W m-2"},
	{0, 5, 3}:  {StandardName: "surface_downwelling_longwave_flux_in_air", Units: "W m-2"},
	{0, 6, 1}:  {StandardName: "cloud_area_fraction", Units: "%"},
	{0, 6, 3}:  {StandardName: "low_type_cloud_area_fraction", Units: "%"},
	{0, 6, 4}:  {StandardName: "medium_type_cloud_area_fraction", Units: "%"},
	{0, 6, 5}:  {StandardName: "high_type_cloud_area_fraction", Units: "%"},
	{0, 6, 6}:  {StandardName: "atmosphere_mass_content_of_cloud_liquid_water", Units: "kg m-2"},
	{0, 6, 7}:  {StandardName: "cloud_area_fraction_in_atmosphere_layer", Units: "%"},
	{0, 7, 6}:  {LongName: "convective_available_potential_energy", Units: "J kg-1"},
	{0, 7, 7}:  {LongName: "convective_inhibition", Units: "J kg-1"},
	{0, 14, 0}: {StandardName: "atmosphere_mole_content_of_ozone", Units: "Dobson"},
	{0, 19, 1}: {LongName: "grib_physical_atmosphere_albedo", Units: "%"},
	{2, 0, 0}:  {StandardName: "land_binary_mask", Units: "1"},
	{2, 0, 1}:  {StandardName: "surface_roughness_length", Units: "m"},
	{2, 0, 2}:  {StandardName: "soil_temperature", Units: "K"},
	{2, 0, 7}:  {StandardName: "surface_altitude", Units: "m"},
	{10, 1, 2}: {StandardName: "eastward_sea_water_velocity", Units: "m s-1"},
	{10, 1, 3}: {StandardName: "northward_sea_water_velocity", Units: "m s-1"},
	{10, 2, 0}: {StandardName: "sea_ice_area_fraction", Units: "1"},
	{10, 3, 0}: {StandardName: "sea_surface_temperature", Units: "K"},
}

// cfToGrib2 is derived from grib2ToCF at init; where several wire
// identities share a name the first discipline/category/number order wins.
var cfToGrib2 = func() map[CFName]Grib2Key {
	out := make(map[CFName]Grib2Key, len(grib2ToCF))
	for key, name := range grib2ToCF {
		// A set standard name makes the long name irrelevant for lookup.
		lookup := name
		if lookup.StandardName != "" {
			lookup.LongName = ""
		}
		lookup.Units = ""
		if prev, ok := out[lookup]; !ok || less(key, prev) {
			out[lookup] = key
		}
	}
	return out
}()

func less(a, b Grib2Key) bool {
	if a.Discipline != b.Discipline {
		return a.Discipline < b.Discipline
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	return a.Number < b.Number
}

// grib1ToCF carries the edition-1 local table entries (centre 98,
// table2Version 128) the engine recognises.
var grib1ToCF = map[Grib1Key]CFName{
	{128, 98, 129}: {StandardName: "geopotential", Units: "m2 s-2"},
	{128, 98, 130}: {StandardName: "air_temperature", Units: "K"},
	{128, 98, 131}: {StandardName: "x_wind", Units: "m s-1"},
	{128, 98, 132}: {StandardName: "y_wind", Units: "m s-1"},
	{128, 98, 133}: {StandardName: "specific_humidity", Units: "kg kg-1"},
	{128, 98, 134}: {StandardName: "surface_air_pressure", Units: "Pa"},
	{128, 98, 135}: {StandardName: "lagrangian_tendency_of_air_pressure", Units: "Pa s-1"},
	{128, 98, 138}: {StandardName: "atmosphere_relative_vorticity", Units: "s-1"},
	{128, 98, 141}: {StandardName: "thickness_of_snowfall_amount", Units: "m"},
	{128, 98, 151}: {StandardName: "air_pressure_at_sea_level", Units: "Pa"},
	{128, 98, 155}: {StandardName: "divergence_of_wind", Units: "s-1"},
	{128, 98, 157}: {StandardName: "relative_humidity", Units: "%"},
	{128, 98, 164}: {StandardName: "cloud_area_fraction", Units: "1"},
	{128, 98, 167}: {StandardName: "air_temperature", Units: "K"},
	{128, 98, 172}: {StandardName: "land_binary_mask", Units: "1"},
}
