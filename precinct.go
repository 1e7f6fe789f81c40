// Copyright 2025 The Precinct Data Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package precinctcore

// DataverseShortNames are the release datasets carved out of the combined
// precinct returns. They appear in file names and in the dataverse column.
var DataverseShortNames = []string{"president", "senate", "house", "state", "local"}

// DataverseAll marks rows included in every release dataset.
const DataverseAll = "all"

// DataverseColumn is the data-management column used to assign rows to
// release datasets. It is expected in final state CSVs and dropped from
// released tables.
const DataverseColumn = "dataverse"

// PrecinctVariables returns the declarations for release-ready precinct
// returns, in canonical column order. FIPS and ANSI codes should be
// integers but may be missing, which requires the float type.
func PrecinctVariables() []VariableSpec {
	return []VariableSpec{
		// election characteristics
		{Name: "year", Type: TypeInteger, NotNull: true,
			Description: "Year of the election"},
		{Name: "stage", Type: TypeString, NotNull: true,
			AllowedValues: []string{"gen", "pri"},
			Description:   "Stage of the election: gen (general) or pri (primary)"},
		{Name: "special", Type: TypeBoolean, NotNull: true,
			Description: "Whether the returns are from a special election"},
		// state
		{Name: "state", Type: TypeString, NotNull: true,
			Description: "State name"},
		{Name: "state_postal", Type: TypeString, NotNull: true,
			Description: "State postal abbreviation"},
		{Name: "state_fips", Type: TypeInteger, NotNull: true,
			Description: "State FIPS code"},
		{Name: "state_icpsr", Type: TypeInteger, NotNull: true,
			Description: "State ICPSR code"},
		// county
		{Name: "county_name", Type: TypeString,
			Description: "County name"},
		{Name: "county_fips", Type: TypeFloat,
			Description: "County FIPS code"},
		{Name: "county_ansi", Type: TypeFloat,
			Description: "County ANSI code"},
		{Name: "county_lat", Type: TypeFloat,
			Description: "County centroid latitude"},
		{Name: "county_long", Type: TypeFloat,
			Description: "County centroid longitude"},
		// administrative jurisdictions
		{Name: "jurisdiction", Type: TypeString, NotNull: true,
			Description: "Administrative jurisdiction reporting the returns, typically a county or township"},
		{Name: "precinct", Type: TypeString, NotNull: true,
			Description: "Precinct as reported by the jurisdiction"},
		// candidate
		{Name: "candidate", Type: TypeString,
			Description: "Candidate name",
			Note:        "Null only for some write-in votes"},
		{Name: "candidate_last", Type: TypeString,
			Description: "Candidate last name"},
		{Name: "candidate_first", Type: TypeString,
			Description: "Candidate first name"},
		{Name: "candidate_middle", Type: TypeString,
			Description: "Candidate middle name"},
		{Name: "candidate_full", Type: TypeString,
			Description: "Candidate full name as reported"},
		{Name: "candidate_suffix", Type: TypeString,
			Description: "Candidate name suffix"},
		{Name: "candidate_nickname", Type: TypeString,
			Description: "Candidate nickname"},
		{Name: "candidate_fec", Type: TypeString,
			Description: "Candidate FEC identifier"},
		{Name: "candidate_fec_name", Type: TypeString,
			Description: "Candidate name as it appears in FEC data"},
		{Name: "candidate_google", Type: TypeString,
			Description: "Candidate Google Knowledge Graph entity identifier"},
		{Name: "candidate_govtrack", Type: TypeString,
			Description: "Candidate GovTrack identifier"},
		{Name: "candidate_icpsr", Type: TypeFloat,
			Description: "Candidate ICPSR identifier"},
		{Name: "candidate_maplight", Type: TypeString,
			Description: "Candidate MapLight identifier"},
		{Name: "candidate_normalized", Type: TypeString,
			Description: "Normalized candidate last name, lowercased for matching across sources"},
		{Name: "candidate_opensecrets", Type: TypeString,
			Description: "Candidate OpenSecrets identifier"},
		{Name: "candidate_wikidata", Type: TypeString,
			Description: "Candidate Wikidata identifier"},
		{Name: "candidate_party", Type: TypeString,
			Description: "Party of the candidate, which may differ from the party on the ballot line"},
		// election
		{Name: "office", Type: TypeString, NotNull: true,
			Description: "Office the candidate ran for"},
		{Name: "district", Type: TypeString,
			Description: "District of the office; statewide where districts do not apply"},
		{Name: "writein", Type: TypeBoolean, NotNull: true,
			Description: "Whether the votes are write-in votes"},
		{Name: "party", Type: TypeString,
			Description: "Party on the ballot line"},
		{Name: "mode", Type: TypeString, NotNull: true,
			Description: "Mode of the vote: election day, absentee, and so on"},
		{Name: "votes", Type: TypeInteger, NotNull: true,
			Description: "Number of votes received"},
		// data management: expected in final CSVs, excluded from releases
		{Name: DataverseColumn, Type: TypeString, NotNull: true,
			AllowedValues: []string{"president", "senate", "house", "state", "local", DataverseAll},
			Description:   "Release dataset the row belongs to; rows marked all appear in every release"},
	}
}

// PrecinctSchema returns the canonical precinct-returns registry.
func PrecinctSchema() *Schema {
	s, err := NewSchema(PrecinctVariables())
	if err != nil {
		// The canonical declarations are fixed at compile time.
		panic(err)
	}
	return s
}
