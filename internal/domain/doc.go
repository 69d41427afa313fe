// Package domain models NASA FIRMS active-fire detections around a volcanic vent.
//
// # Data Source
//
// Detections come from the NASA FIRMS area API, which serves CSV extracts of
// near-real-time thermal-anomaly products, one product per satellite sensor:
//
//	VIIRS_SNPP_NRT    Suomi NPP VIIRS      label "SNPP"
//	VIIRS_NOAA20_NRT  NOAA-20 VIIRS        label "NOAA20"
//	VIIRS_NOAA21_NRT  NOAA-21 VIIRS        label "NOAA21"
//	MODIS_NRT         Aqua/Terra MODIS     label "MODIS"
//
// Each product is archived independently; the products never share an archive
// because their footprints and reprocessing schedules differ.
//
// # FIRMS Data Conventions
//
// Time format:
//
//	acq_time is HHMM in 24-hour UTC notation, e.g. "1510" = 15:10 UTC.
//	The API returns it without leading zeros ("930" → 09:30), so it is
//	zero-padded to 4 characters on ingest. The acquisition date arrives as
//	YYYY-MM-DD from the API; archives store it as DD/MM/YYYY.
//
// Measurements:
//
//	frp    fire radiative power in MW, an intensity proxy for the anomaly.
//	track  sensor footprint width (km) at the detection. Wide footprints mean
//	       poor positional accuracy, so track is used as a quality filter.
//
// # Dedup Key
//
// NRT products are reprocessed upstream: repeated downloads of the same day
// return the same physical detections with sub-meter coordinate jitter. Two
// rows are considered the same detection when they share product, acquisition
// date, acquisition time, and coordinates rounded to 4 decimal degrees
// (~11 m at the equator). See [DedupKey]. Rounding only feeds the key; stored
// coordinates keep full precision.
//
// # Geometry
//
// Distances from the vent use the great-circle (Haversine) formula with a
// mean Earth radius of 6371.0 km. Download bounding boxes are derived from
// the vent coordinates and a search radius in meters using 111320 m per
// degree of latitude and the cos(lat) correction for longitude.
package domain
