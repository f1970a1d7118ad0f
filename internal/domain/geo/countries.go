// Package geo holds the country reference data used to label aggregates:
// ISO-3166 alpha-2 codes, display names, continents and ccTLD mapping.
package geo

import (
	"strings"
	"sync"
)

// Continent names.
const (
	Africa       = "Africa"
	Antarctica   = "Antarctica"
	Asia         = "Asia"
	Europe       = "Europe"
	NorthAmerica = "North America"
	Oceania      = "Oceania"
	SouthAmerica = "South America"
)

// Continents lists every continent in display order.
var Continents = []string{Africa, Asia, Europe, NorthAmerica, SouthAmerica, Oceania, Antarctica}

// Country is a reference entry.
type Country struct {
	Code      string
	Name      string
	Continent string
}

// code|name|continent (AF, AN, AS, EU, NA, OC, SA)
const table = `AD|Andorra|EU
AE|United Arab Emirates|AS
AF|Afghanistan|AS
AG|Antigua and Barbuda|NA
AI|Anguilla|NA
AL|Albania|EU
AM|Armenia|AS
AO|Angola|AF
AQ|Antarctica|AN
AR|Argentina|SA
AS|American Samoa|OC
AT|Austria|EU
AU|Australia|OC
AW|Aruba|NA
AX|Aland Islands|EU
AZ|Azerbaijan|AS
BA|Bosnia and Herzegovina|EU
BB|Barbados|NA
BD|Bangladesh|AS
BE|Belgium|EU
BF|Burkina Faso|AF
BG|Bulgaria|EU
BH|Bahrain|AS
BI|Burundi|AF
BJ|Benin|AF
BL|Saint Barthelemy|NA
BM|Bermuda|NA
BN|Brunei|AS
BO|Bolivia|SA
BQ|Caribbean Netherlands|NA
BR|Brazil|SA
BS|Bahamas|NA
BT|Bhutan|AS
BV|Bouvet Island|AN
BW|Botswana|AF
BY|Belarus|EU
BZ|Belize|NA
CA|Canada|NA
CC|Cocos Islands|AS
CD|Democratic Republic of the Congo|AF
CF|Central African Republic|AF
CG|Republic of the Congo|AF
CH|Switzerland|EU
CI|Ivory Coast|AF
CK|Cook Islands|OC
CL|Chile|SA
CM|Cameroon|AF
CN|China|AS
CO|Colombia|SA
CR|Costa Rica|NA
CU|Cuba|NA
CV|Cape Verde|AF
CW|Curacao|NA
CX|Christmas Island|AS
CY|Cyprus|EU
CZ|Czechia|EU
DE|Germany|EU
DJ|Djibouti|AF
DK|Denmark|EU
DM|Dominica|NA
DO|Dominican Republic|NA
DZ|Algeria|AF
EC|Ecuador|SA
EE|Estonia|EU
EG|Egypt|AF
EH|Western Sahara|AF
ER|Eritrea|AF
ES|Spain|EU
ET|Ethiopia|AF
FI|Finland|EU
FJ|Fiji|OC
FK|Falkland Islands|SA
FM|Micronesia|OC
FO|Faroe Islands|EU
FR|France|EU
GA|Gabon|AF
GB|United Kingdom|EU
GD|Grenada|NA
GE|Georgia|AS
GF|French Guiana|SA
GG|Guernsey|EU
GH|Ghana|AF
GI|Gibraltar|EU
GL|Greenland|NA
GM|Gambia|AF
GN|Guinea|AF
GP|Guadeloupe|NA
GQ|Equatorial Guinea|AF
GR|Greece|EU
GS|South Georgia and the South Sandwich Islands|AN
GT|Guatemala|NA
GU|Guam|OC
GW|Guinea-Bissau|AF
GY|Guyana|SA
HK|Hong Kong|AS
HM|Heard Island and McDonald Islands|AN
HN|Honduras|NA
HR|Croatia|EU
HT|Haiti|NA
HU|Hungary|EU
ID|Indonesia|AS
IE|Ireland|EU
IL|Israel|AS
IM|Isle of Man|EU
IN|India|AS
IO|British Indian Ocean Territory|AS
IQ|Iraq|AS
IR|Iran|AS
IS|Iceland|EU
IT|Italy|EU
JE|Jersey|EU
JM|Jamaica|NA
JO|Jordan|AS
JP|Japan|AS
KE|Kenya|AF
KG|Kyrgyzstan|AS
KH|Cambodia|AS
KI|Kiribati|OC
KM|Comoros|AF
KN|Saint Kitts and Nevis|NA
KP|North Korea|AS
KR|South Korea|AS
KW|Kuwait|AS
KY|Cayman Islands|NA
KZ|Kazakhstan|AS
LA|Laos|AS
LB|Lebanon|AS
LC|Saint Lucia|NA
LI|Liechtenstein|EU
LK|Sri Lanka|AS
LR|Liberia|AF
LS|Lesotho|AF
LT|Lithuania|EU
LU|Luxembourg|EU
LV|Latvia|EU
LY|Libya|AF
MA|Morocco|AF
MC|Monaco|EU
MD|Moldova|EU
ME|Montenegro|EU
MF|Saint Martin|NA
MG|Madagascar|AF
MH|Marshall Islands|OC
MK|North Macedonia|EU
ML|Mali|AF
MM|Myanmar|AS
MN|Mongolia|AS
MO|Macao|AS
MP|Northern Mariana Islands|OC
MQ|Martinique|NA
MR|Mauritania|AF
MS|Montserrat|NA
MT|Malta|EU
MU|Mauritius|AF
MV|Maldives|AS
MW|Malawi|AF
MX|Mexico|NA
MY|Malaysia|AS
MZ|Mozambique|AF
NA|Namibia|AF
NC|New Caledonia|OC
NE|Niger|AF
NF|Norfolk Island|OC
NG|Nigeria|AF
NI|Nicaragua|NA
NL|Netherlands|EU
NO|Norway|EU
NP|Nepal|AS
NR|Nauru|OC
NU|Niue|OC
NZ|New Zealand|OC
OM|Oman|AS
PA|Panama|NA
PE|Peru|SA
PF|French Polynesia|OC
PG|Papua New Guinea|OC
PH|Philippines|AS
PK|Pakistan|AS
PL|Poland|EU
PM|Saint Pierre and Miquelon|NA
PN|Pitcairn Islands|OC
PR|Puerto Rico|NA
PS|Palestine|AS
PT|Portugal|EU
PW|Palau|OC
PY|Paraguay|SA
QA|Qatar|AS
RE|Reunion|AF
RO|Romania|EU
RS|Serbia|EU
RU|Russia|EU
RW|Rwanda|AF
SA|Saudi Arabia|AS
SB|Solomon Islands|OC
SC|Seychelles|AF
SD|Sudan|AF
SE|Sweden|EU
SG|Singapore|AS
SH|Saint Helena|AF
SI|Slovenia|EU
SJ|Svalbard and Jan Mayen|EU
SK|Slovakia|EU
SL|Sierra Leone|AF
SM|San Marino|EU
SN|Senegal|AF
SO|Somalia|AF
SR|Suriname|SA
SS|South Sudan|AF
ST|Sao Tome and Principe|AF
SV|El Salvador|NA
SX|Sint Maarten|NA
SY|Syria|AS
SZ|Eswatini|AF
TC|Turks and Caicos Islands|NA
TD|Chad|AF
TF|French Southern Territories|AN
TG|Togo|AF
TH|Thailand|AS
TJ|Tajikistan|AS
TK|Tokelau|OC
TL|Timor-Leste|AS
TM|Turkmenistan|AS
TN|Tunisia|AF
TO|Tonga|OC
TR|Turkey|AS
TT|Trinidad and Tobago|NA
TV|Tuvalu|OC
TW|Taiwan|AS
TZ|Tanzania|AF
UA|Ukraine|EU
UG|Uganda|AF
UM|United States Minor Outlying Islands|OC
US|United States|NA
UY|Uruguay|SA
UZ|Uzbekistan|AS
VA|Vatican City|EU
VC|Saint Vincent and the Grenadines|NA
VE|Venezuela|SA
VG|British Virgin Islands|NA
VI|U.S. Virgin Islands|NA
VN|Vietnam|AS
VU|Vanuatu|OC
WF|Wallis and Futuna|OC
WS|Samoa|OC
XK|Kosovo|EU
YE|Yemen|AS
YT|Mayotte|AF
ZA|South Africa|AF
ZM|Zambia|AF
ZW|Zimbabwe|AF`

// aliases are alternative spellings seen in mapping files and older datasets.
var aliases = map[string]string{
	"united states of america":       "US",
	"usa":                            "US",
	"uk":                             "GB",
	"great britain":                  "GB",
	"russian federation":             "RU",
	"czech republic":                 "CZ",
	"cote d'ivoire":                  "CI",
	"côte d'ivoire":                  "CI",
	"republic of korea":              "KR",
	"korea, south":                   "KR",
	"korea, north":                   "KP",
	"swaziland":                      "SZ",
	"macedonia":                      "MK",
	"burma":                          "MM",
	"east timor":                     "TL",
	"turkiye":                        "TR",
	"türkiye":                        "TR",
	"holy see":                       "VA",
	"viet nam":                       "VN",
	"palestinian territories":        "PS",
	"occupied palestinian territory": "PS",
	"congo":                          "CG",
	"dr congo":                       "CD",
}

var continentCodes = map[string]string{
	"AF": Africa, "AN": Antarctica, "AS": Asia, "EU": Europe,
	"NA": NorthAmerica, "OC": Oceania, "SA": SouthAmerica,
}

var (
	loadOnce sync.Once
	byCode   map[string]Country
	byName   map[string]string
)

func load() {
	byCode = make(map[string]Country, 260)
	byName = make(map[string]string, 300)
	for _, line := range strings.Split(table, "\n") {
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			continue
		}
		c := Country{Code: parts[0], Name: parts[1], Continent: continentCodes[parts[2]]}
		byCode[c.Code] = c
		byName[strings.ToLower(c.Name)] = c.Code
	}
	for alias, code := range aliases {
		byName[alias] = code
	}
}

// Lookup returns the reference entry of an ISO alpha-2 code (any case).
func Lookup(code string) (Country, bool) {
	loadOnce.Do(load)
	c, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Name returns the display name of code, or an empty string when unknown.
func Name(code string) string {
	c, _ := Lookup(code)
	return c.Name
}

// ContinentOf returns the continent of code, or an empty string when unknown.
func ContinentOf(code string) string {
	c, _ := Lookup(code)
	return c.Continent
}

// CodeByName resolves a country name or alias (case-insensitive) to its code.
func CodeByName(name string) (string, bool) {
	loadOnce.Do(load)
	code, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// Normalize accepts either a country code or a country name and returns the
// ISO alpha-2 code. Unknown two-letter values are returned upper-cased so
// that data from newer mapping files is not lost.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if len(v) == 2 {
		return strings.ToUpper(v)
	}
	if code, ok := CodeByName(v); ok {
		return code
	}
	return ""
}

// All returns every known country sorted by code.
func All() []Country {
	loadOnce.Do(load)
	out := make([]Country, 0, len(byCode))
	for _, line := range strings.Split(table, "\n") {
		if len(line) < 2 {
			continue
		}
		if c, ok := byCode[line[:2]]; ok {
			out = append(out, c)
		}
	}
	return out
}
