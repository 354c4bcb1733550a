package claims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func testRecord() *Record {
	return &Record{
		FirstName:            "John",
		LastName:             "Doe",
		BirthDate:            Date{Year: 1990, Month: time.May, Day: 14},
		PlaceOfBirth:         "Budapest",
		CountryOfCitizenship: "Hungary",
		Gender:               Male,
		PassportNumber:       "BA1234567",
		DateOfIssue:          Date{Year: 2019, Month: time.January, Day: 8},
		DateOfExpiry:         Date{Year: 2029, Month: time.January, Day: 8},
	}
}

type MatchesSuite struct {
	suite.Suite
}

func TestMatchesSuite(t *testing.T) {
	suite.Run(t, new(MatchesSuite))
}

func (s *MatchesSuite) TestIdenticalRecordsMatch() {
	a, b := testRecord(), testRecord()
	s.True(a.Matches(b))
	s.True(b.Matches(a))
}

func (s *MatchesSuite) TestCaseNoiseIsTolerated() {
	a, b := testRecord(), testRecord()
	b.FirstName = "JOHN"
	b.LastName = "doe"
	b.PlaceOfBirth = "BUDAPEST"
	b.CountryOfCitizenship = "hungary"
	s.True(a.Matches(b), "prose fields fold case before comparison")
}

func (s *MatchesSuite) TestPassportNumberIsCaseSensitive() {
	a, b := testRecord(), testRecord()
	b.PassportNumber = "ba1234567"
	s.False(a.Matches(b), "passport number is an identifier, not prose")
}

func (s *MatchesSuite) TestSingleDayDateDifferenceMismatches() {
	a, b := testRecord(), testRecord()
	b.DateOfExpiry = Date{Year: 2029, Month: time.January, Day: 9}
	s.False(a.Matches(b))
}

func (s *MatchesSuite) TestEveryFieldParticipates() {
	mutations := map[string]func(*Record){
		"first name":  func(r *Record) { r.FirstName = "Jane" },
		"last name":   func(r *Record) { r.LastName = "Smith" },
		"birth date":  func(r *Record) { r.BirthDate.Day++ },
		"birth place": func(r *Record) { r.PlaceOfBirth = "Debrecen" },
		"citizenship": func(r *Record) { r.CountryOfCitizenship = "Austria" },
		"gender":      func(r *Record) { r.Gender = Female },
		"passport no": func(r *Record) { r.PassportNumber = "XX0000000" },
		"issue date":  func(r *Record) { r.DateOfIssue.Month = time.March },
		"expiry date": func(r *Record) { r.DateOfExpiry.Year++ },
	}
	for name, mutate := range mutations {
		a, b := testRecord(), testRecord()
		mutate(b)
		s.False(a.Matches(b), "mutated %s must break the match", name)
	}
}

func (s *MatchesSuite) TestNilIsNeverAMatch() {
	a := testRecord()
	s.False(a.Matches(nil))
	var nilRec *Record
	s.False(nilRec.Matches(a))
}

func TestDateISO(t *testing.T) {
	d := Date{Year: 2001, Month: time.February, Day: 3}
	assert.Equal(t, "2001-02-03", d.ISO())
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := Date{Year: 2001, Month: time.February, Day: 3}
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2001-02-03"`, string(b))

	var back Date
	require.NoError(t, back.UnmarshalJSON(b))
	assert.Equal(t, d, back)
}

func TestParseGender(t *testing.T) {
	for in, want := range map[string]Gender{
		"M": Male, "MALE": Male, "male": Male,
		"F": Female, "FEMALE": Female, " female ": Female,
	} {
		got, err := ParseGender(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseGender("X")
	assert.Error(t, err)
}
