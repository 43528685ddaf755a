package billing

// Level is one step of the address hierarchy.
type Level int

const (
	LevelCountry Level = iota
	LevelRegion
	LevelCity
	LevelDistrict
	levelCount
)

var levelNames = [levelCount]string{"country_code", "region", "city", "district"}

func (l Level) String() string {
	if l < 0 || l >= levelCount {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLevel returns the level named by its field name, e.g. "region".
func ParseLevel(name string) (Level, bool) {
	for l := LevelCountry; l < levelCount; l++ {
		if l.String() == name {
			return l, true
		}
	}
	return 0, false
}

// labelKeys are the bundle keys naming each level in placeholders.
var labelKeys = [levelCount]string{"country", "region", "city", "district"}

// ChangeOptions qualify a level change.
type ChangeOptions struct {
	// SetFirstValueAsDefault marks a programmatic default selection, which
	// must not clear a just loaded address below it.
	SetFirstValueAsDefault bool `json:"set_first_value_as_default"`
}

// AddressState is the Country→Region→City→District selection state machine.
// Every transition completes inside a single method call.
type AddressState struct {
	values [levelCount]string
}

// NewAddressState seeds the state from a previously selected address.
func NewAddressState(a Address) *AddressState {
	return &AddressState{values: [levelCount]string{a.CountryCode, a.Region, a.City, a.District}}
}

// Change sets level to v. Unless opts mark a default selection, every level
// below it is cleared.
func (s *AddressState) Change(level Level, v string, opts ChangeOptions) {
	if level < 0 || level >= levelCount {
		return
	}
	s.values[level] = v
	if opts.SetFirstValueAsDefault {
		return
	}
	for l := level + 1; l < levelCount; l++ {
		s.values[l] = ""
	}
}

func (s *AddressState) ChangeCountry(v string, opts ChangeOptions) {
	s.Change(LevelCountry, v, opts)
}

func (s *AddressState) ChangeRegion(v string, opts ChangeOptions) {
	s.Change(LevelRegion, v, opts)
}

func (s *AddressState) ChangeCity(v string, opts ChangeOptions) {
	s.Change(LevelCity, v, opts)
}

// ChangeDistrict sets the district; it has no descendants.
func (s *AddressState) ChangeDistrict(v string) {
	s.Change(LevelDistrict, v, ChangeOptions{})
}

// Value returns the selection at level.
func (s *AddressState) Value(level Level) string {
	if level < 0 || level >= levelCount {
		return ""
	}
	return s.values[level]
}

// Enabled reports whether level can be chosen, i.e. its parent is selected.
func (s *AddressState) Enabled(level Level) bool {
	if level == LevelCountry {
		return true
	}
	if level <= 0 || level >= levelCount {
		return false
	}
	return s.values[level-1] != ""
}

// Placeholder returns the bundle key and parameter key of the empty option:
// "select_first" naming the parent while the parent is unset, else "select_option".
func (s *AddressState) Placeholder(level Level) (key, parentLabelKey string) {
	if level <= LevelCountry || level >= levelCount {
		return "select_option", ""
	}
	if !s.Enabled(level) {
		return "select_first", labelKeys[level-1]
	}
	return "select_option", ""
}

// Apply writes the selection into a.
func (s *AddressState) Apply(a *Address) {
	a.CountryCode = s.values[LevelCountry]
	a.Region = s.values[LevelRegion]
	a.City = s.values[LevelCity]
	a.District = s.values[LevelDistrict]
}
