package model

import "strings"

// OtherDiagnosis is the label assigned to diagnosis codes with no mapping.
const OtherDiagnosis = "Other diagnosis"

// icd9Descriptions maps 3-character ICD-9 code prefixes to descriptions for
// the conditions that dominate DE-SynPUF spend.
var icd9Descriptions = map[string]string{
	"250": "Diabetes mellitus",
	"401": "Essential hypertension",
	"272": "Disorders of lipoid metabolism",
	"414": "Other forms of chronic ischemic heart disease",
	"427": "Cardiac dysrhythmias",
	"428": "Heart failure",
	"496": "Chronic airway obstruction",
	"311": "Depressive disorder",
	"715": "Osteoarthrosis",
	"724": "Other and unspecified disorders of back",
}

// DiagnosisDescription returns the description for an ICD-9 code, matching on
// the first 3 characters. Unmapped codes get the generic label; empty codes
// are unknown.
func DiagnosisDescription(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if len(code) >= 3 {
		if desc, ok := icd9Descriptions[code[:3]]; ok {
			return desc
		}
	}
	return OtherDiagnosis
}

// sexCodes decodes BENE_SEX_IDENT_CD.
var sexCodes = map[string]string{
	"1": "Male",
	"2": "Female",
}

// raceCodes decodes BENE_RACE_CD.
var raceCodes = map[string]string{
	"1": "White",
	"2": "Black",
	"3": "Others",
	"5": "Hispanic",
}

// stateCodes decodes SSA state codes (SP_STATE_CODE) to USPS abbreviations.
var stateCodes = map[string]string{
	"01": "AL", "02": "AK", "03": "AZ", "04": "AR", "05": "CA",
	"06": "CO", "07": "CT", "08": "DE", "09": "DC", "10": "FL",
	"11": "GA", "12": "HI", "13": "ID", "14": "IL", "15": "IN",
	"16": "IA", "17": "KS", "18": "KY", "19": "LA", "20": "ME",
	"21": "MD", "22": "MA", "23": "MI", "24": "MN", "25": "MS",
	"26": "MO", "27": "MT", "28": "NE", "29": "NV", "30": "NH",
	"31": "NJ", "32": "NM", "33": "NY", "34": "NC", "35": "ND",
	"36": "OH", "37": "OK", "38": "OR", "39": "PA", "40": "RI",
	"41": "SC", "42": "SD", "43": "TN", "44": "TX", "45": "UT",
	"46": "VT", "47": "VA", "48": "WA", "49": "WV", "50": "WI",
	"51": "WY", "52": "PR", "53": "VI", "54": "GU", "55": "AS",
	"56": "MP", "99": "Unknown",
}

// DecodeSex maps a raw sex code to its label, nil when unmapped.
func DecodeSex(code string) *string {
	return decode(sexCodes, code)
}

// DecodeRace maps a raw race code to its label, nil when unmapped.
func DecodeRace(code string) *string {
	return decode(raceCodes, code)
}

// DecodeState maps an SSA state code to a USPS abbreviation, nil when unmapped.
func DecodeState(code string) *string {
	return decode(stateCodes, code)
}

func decode(m map[string]string, code string) *string {
	if v, ok := m[strings.TrimSpace(code)]; ok {
		return &v
	}
	return nil
}
