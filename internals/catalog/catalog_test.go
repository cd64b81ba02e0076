package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, k := range []Kind{KindSchool, KindCollege, KindPUCollege, KindTuitionCoaching} {
		s, err := Lookup(k)
		require.NoError(t, err)
		assert.Equal(t, k, s.Kind)
		assert.NotEmpty(t, s.OfferingsKey)
		assert.NotEmpty(t, s.ImageKey)
		assert.True(t, s.IsRequired(FieldName))
	}

	_, err := Lookup("university")
	assert.Error(t, err)
	assert.Panics(t, func() { MustLookup("university") })
}

func TestPaths(t *testing.T) {
	s := MustLookup(KindCollege)

	tests := []struct {
		got, want string
	}{
		{s.ListPath(), "/admin/getcolleges"},
		{s.ItemPath("42"), "/admin/getcolleges/42"},
		{s.CreatePath(), "/admin/addcolleges"},
		{s.UpdatePath("42"), "/admin/updatecolleges/42"},
		{s.DeletePath("42"), "/admin/del-colleges/42"},
		{s.SearchPath(), "/admin/search/colleges"},
		{s.TypesPath(), "/admin/colleges-types"},
		{s.ReviewsPath("42"), "/colleges/42/reviews"},
		{s.DetailRoute("42"), "/colleges/42"},
		{s.AdminEditRoute("42"), "/admin/colleges/edit/42"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.got)
	}
}

func TestBySegment(t *testing.T) {
	s, ok := BySegment(" PUColleges ")
	require.True(t, ok)
	assert.Equal(t, KindPUCollege, s.Kind)

	_, ok = BySegment("hospitals")
	assert.False(t, ok)
}

func TestAllIsSortedAndComplete(t *testing.T) {
	all := All()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, string(all[i-1].Kind), string(all[i].Kind))
	}
}

func TestPerKindBehaviour(t *testing.T) {
	assert.Equal(t, AccordionMulti, MustLookup(KindPUCollege).AccordionMode)
	assert.Equal(t, AccordionSingle, MustLookup(KindCollege).AccordionMode)
	assert.Equal(t, AccordionSingle, MustLookup(KindTuitionCoaching).AccordionMode)

	assert.Equal(t, ReviewLive, MustLookup(KindCollege).ReviewMode)
	assert.Equal(t, ReviewLocalDemo, MustLookup(KindSchool).ReviewMode)
	assert.Equal(t, ReviewLocalDemo, MustLookup(KindTuitionCoaching).ReviewMode)

	assert.True(t, MustLookup(KindCollege).StrictUploads)
	assert.False(t, MustLookup(KindSchool).StrictUploads)
}

func TestFeeLabel(t *testing.T) {
	assert.Equal(t, "Admission Fee", FeeLabel(FeeAdmission))
	assert.Equal(t, "otherFee", FeeLabel("otherFee"))
}
