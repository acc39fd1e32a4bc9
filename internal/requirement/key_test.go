package requirement

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func TestKeyOf_CanonicalForms(t *testing.T) {
	tests := []struct {
		name string
		req  domain.Requirement
		want string
	}{
		{
			name: "item drop sorts ids",
			req: domain.ItemDropRequirement{Items: []domain.ItemTarget{
				{ItemID: 4151, Amount: 1},
				{ItemID: 526, Amount: 3},
			}},
			want: "ITEM_DROP:526:3,4151:1",
		},
		{
			name: "item drop with total",
			req: domain.ItemDropRequirement{
				Items:       []domain.ItemTarget{{ItemID: 11832, Amount: 1}, {ItemID: 11834, Amount: 1}},
				TotalAmount: int64Ptr(2),
			},
			want: "ITEM_DROP:11832:1,11834:1:total=2",
		},
		{name: "pet", req: domain.PetRequirement{PetName: "Baby mole", Amount: 1}, want: "PET:Baby mole:1"},
		{name: "value drop", req: domain.ValueDropRequirement{Value: 1000000}, want: "VALUE_DROP:1000000"},
		{name: "speedrun", req: domain.SpeedrunRequirement{Location: "Vorkath", GoalSeconds: 180}, want: "SPEEDRUN:Vorkath:180"},
		{name: "experience", req: domain.ExperienceRequirement{Skill: "fishing", Experience: 500000}, want: "EXPERIENCE:fishing:500000"},
		{name: "gambles", req: domain.BAGamblesRequirement{Amount: 50}, want: "BA_GAMBLES:50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyOf(tt.req))
		})
	}
}

func TestKeyOf_FallbackSortsKeys(t *testing.T) {
	req := domain.ChatRequirement{Pattern: "gz", Amount: 3, Sources: []string{"CLAN"}}

	key := KeyOf(req)

	assert.Equal(t, `UNKNOWN:{"amount":3,"pattern":"gz","sources":["CLAN"],"type":"CHAT"}`, key)
}

func TestKeyOf_UnknownKindUsesRawDocument(t *testing.T) {
	a, err := domain.UnmarshalRequirement([]byte(`{"type":"FUTURE","zeta":1,"alpha":2}`))
	require.NoError(t, err)
	b, err := domain.UnmarshalRequirement([]byte(`{"alpha":2,"type":"FUTURE","zeta":1}`))
	require.NoError(t, err)

	assert.Equal(t, `UNKNOWN:{"alpha":2,"type":"FUTURE","zeta":1}`, KeyOf(a))
	assert.Equal(t, KeyOf(a), KeyOf(b))
}

func TestKeyOf_StableUnderShuffle(t *testing.T) {
	reqs := []domain.Requirement{
		domain.ItemDropRequirement{Items: []domain.ItemTarget{{ItemID: 3, Amount: 1}, {ItemID: 1, Amount: 2}, {ItemID: 2, Amount: 5}}},
		domain.PetRequirement{PetName: "Olmlet", Amount: 1},
		domain.SpeedrunRequirement{Location: "Zulrah", GoalSeconds: 60},
		domain.BAGamblesRequirement{Amount: 50},
		domain.ChatRequirement{Pattern: "funny feeling", Amount: 1},
	}
	want := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		want[KeyOf(r)] = true
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		shuffled := make([]domain.Requirement, len(reqs))
		copy(shuffled, reqs)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		for _, r := range shuffled {
			assert.True(t, want[KeyOf(r)])
		}
	}

	// Reordering items inside one requirement does not change its key either
	reordered := domain.ItemDropRequirement{Items: []domain.ItemTarget{{ItemID: 2, Amount: 5}, {ItemID: 3, Amount: 1}, {ItemID: 1, Amount: 2}}}
	assert.Equal(t, KeyOf(reqs[0]), KeyOf(reordered))
}

func TestKeyOf_ChangesWithIdentity(t *testing.T) {
	base := domain.ItemDropRequirement{Items: []domain.ItemTarget{{ItemID: 526, Amount: 1}}}
	more := domain.ItemDropRequirement{Items: []domain.ItemTarget{{ItemID: 526, Amount: 2}}}
	total := domain.ItemDropRequirement{Items: []domain.ItemTarget{{ItemID: 526, Amount: 1}}, TotalAmount: int64Ptr(1)}

	assert.NotEqual(t, KeyOf(base), KeyOf(more))
	assert.NotEqual(t, KeyOf(base), KeyOf(total))
}

func TestKeyOf_SurvivesStorageRoundTrip(t *testing.T) {
	list := domain.RequirementList{
		domain.ItemDropRequirement{Items: []domain.ItemTarget{{ItemID: 526, Amount: 1}}},
		domain.PuzzleRequirement{
			DisplayName:       "A bone to pick",
			HiddenRequirement: domain.PetRequirement{PetName: "Pet rock", Amount: 1},
		},
	}
	data, err := json.Marshal(list)
	require.NoError(t, err)

	var decoded domain.RequirementList
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	for i := range list {
		assert.Equal(t, KeyOf(list[i]), KeyOf(decoded[i]))
	}
}
