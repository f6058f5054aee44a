package model

// DXFVersion is a DXF file format release that files can be written as.
type DXFVersion int

const (
	VersionUnknown DXFVersion = iota
	R2000
	R2004
	R2007
	R2010
	R2013
	R2018
)

type versionInfo struct {
	tag  string
	acad string
}

// versions maps each supported release to its configuration tag and the
// $ACADVER code written to the header.
var versions = map[DXFVersion]versionInfo{
	R2000: {tag: "2000", acad: "AC1015"},
	R2004: {tag: "2004", acad: "AC1018"},
	R2007: {tag: "2007", acad: "AC1021"},
	R2010: {tag: "2010", acad: "AC1024"},
	R2013: {tag: "2013", acad: "AC1027"},
	R2018: {tag: "2018", acad: "AC1032"},
}

// ACADVerR12 is the header code of R12 files. R12 can be read but is not a
// supported rewrite target.
const ACADVerR12 = "AC1009"

// Tag returns the configuration tag, e.g. "2004". Unknown versions return "".
func (v DXFVersion) Tag() string { return versions[v].tag }

// ACADCode returns the $ACADVER header value, e.g. "AC1018".
func (v DXFVersion) ACADCode() string { return versions[v].acad }

func (v DXFVersion) String() string {
	if info, ok := versions[v]; ok {
		return "R" + info.tag
	}
	return "unknown"
}

// ParseVersionTag maps a configuration tag to a version. Tags outside the
// supported set, including "R12", report false.
func ParseVersionTag(tag string) (DXFVersion, bool) {
	for v, info := range versions {
		if info.tag == tag {
			return v, true
		}
	}
	return VersionUnknown, false
}

// VersionFromACAD maps a $ACADVER header value to a version. Releases older
// than R2000 map to VersionUnknown.
func VersionFromACAD(code string) DXFVersion {
	for v, info := range versions {
		if info.acad == code {
			return v
		}
	}
	return VersionUnknown
}

// SupportedVersionTags lists the tags accepted by ParseVersionTag, oldest
// first.
func SupportedVersionTags() []string {
	return []string{"2000", "2004", "2007", "2010", "2013", "2018"}
}
