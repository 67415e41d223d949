package persona

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/apresai/personaswap/internal/embellish"
	"github.com/apresai/personaswap/internal/text"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func allPersonas(sel embellish.Selector) []Persona {
	return []Persona{NewShakespeare(sel), NewSage(sel), NewHype(sel), NewDetective(sel)}
}

func TestEmptyInput(t *testing.T) {
	for _, p := range allPersonas(embellish.Fixed{Outcome: true}) {
		t.Run(p.Info().Name, func(t *testing.T) {
			assert.Equal(t, "", p.Transform(""))
			assert.Equal(t, "", p.Transform("   \n"))
			assert.Equal(t, "", TransformValue(p, nil))
			assert.Equal(t, "", TransformValue(p, 123))
			assert.Equal(t, "", TransformValue(p, ""))
			assert.NotEmpty(t, TransformValue(p, "hello there"))
		})
	}
}

func TestDeterministicUnderFixedSelector(t *testing.T) {
	input := "Hello friend, this is a good idea. Do you think it will work? I really need to know!"
	for _, p := range allPersonas(embellish.Fixed{}) {
		t.Run(p.Info().Name, func(t *testing.T) {
			first := p.Transform(input)
			assert.Equal(t, first, p.Transform(input))
		})
	}
}

func TestSeededReproducible(t *testing.T) {
	input := "This is a good idea. AI is interesting. We have to move fast. Really?"
	a, b := Default(embellish.NewSeeded(99)), Default(embellish.NewSeeded(99))
	for _, key := range a.Keys() {
		pa, err := a.Resolve(key)
		require.NoError(t, err)
		pb, err := b.Resolve(key)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			assert.Equal(t, pa.Transform(input), pb.Transform(input), key)
		}
	}
}

func TestRecordedDrawsReplay(t *testing.T) {
	rec := embellish.NewRecorder(embellish.NewSeeded(5))
	input := "The product is good. Electric vehicles matter. Sustainable energy is important."
	first := NewHype(rec).Transform(input)
	assert.Equal(t, first, NewHype(rec.Replay()).Transform(input))
}

func TestInfoIsCopied(t *testing.T) {
	p := NewShakespeare(nil)
	info := p.Info()
	info.Examples[0].Original = "changed"
	assert.Equal(t, "Hello, how are you today?", p.Info().Examples[0].Original)
}

func TestConcurrentTransforms(t *testing.T) {
	reg := Default(embellish.Global())
	var wg sync.WaitGroup
	for _, key := range reg.Keys() {
		p, err := reg.Resolve(key)
		require.NoError(t, err)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					if out := p.Transform("I am going to the store, then home. Is that good?"); out == "" {
						t.Errorf("%s: empty output", key)
					}
				}
			}()
		}
	}
	wg.Wait()
}

func TestRegistryAliases(t *testing.T) {
	reg := Default(embellish.Fixed{})

	musk, err := reg.Resolve("musk")
	require.NoError(t, err)
	for _, key := range []string{"elon", "ElonMusk", "Elon Musk", "elon_musk", " MUSK "} {
		p, err := reg.Resolve(key)
		require.NoError(t, err, key)
		assert.Same(t, musk, p, key)
		assert.Equal(t, "Elon Musk", p.Info().Name)
	}

	for key, name := range map[string]string{
		"shakespeare":    "Shakespeare",
		"yoda":           "Yoda",
		"holmes":         "Sherlock Holmes",
		"SherlockHolmes": "Sherlock Holmes",
	} {
		p, err := reg.Resolve(key)
		require.NoError(t, err, key)
		assert.Equal(t, name, p.Info().Name)
	}
}

func TestRegistryUnknown(t *testing.T) {
	reg := Default(embellish.Fixed{})
	p, err := reg.Resolve("napoleon")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "napoleon")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "napoleon", nf.Key)
}

func TestRegistryListAndAliases(t *testing.T) {
	reg := Default(embellish.Fixed{})
	var names []string
	for _, info := range reg.List() {
		names = append(names, info.Name)
		assert.NotEmpty(t, info.Description)
		assert.NotEmpty(t, info.Examples)
	}
	assert.Equal(t, []string{"Shakespeare", "Yoda", "Elon Musk", "Sherlock Holmes"}, names)
	assert.Equal(t, []string{"elon", "elonmusk"}, reg.Aliases()["musk"])
}

func TestRegistryDuplicateAliasPanics(t *testing.T) {
	p := NewSage(embellish.Fixed{})
	assert.Panics(t, func() {
		NewRegistry(
			Entry{Key: "yoda", Persona: p},
			Entry{Key: "other", Aliases: []string{"Yoda"}, Persona: p},
		)
	})
}

func TestShakespeareGreeting(t *testing.T) {
	out := NewShakespeare(embellish.Fixed{}).Transform("Hello, how are you today?")
	assert.Contains(t, out, "hark")
	assert.Contains(t, out, "art")
	assert.Contains(t, out, "thou")
	assert.True(t, strings.ToUpper(out[:1]) == out[:1])
	assert.Equal(t, "Pray tell, hark, how art thou today?", out)
}

func TestShakespeareSuffixes(t *testing.T) {
	out := NewShakespeare(embellish.Fixed{}).Transform("He walked and transforms")
	assert.Equal(t, "Verily, he walk'd and transformseth.", out)
}

func TestShakespeareSuffixesStayInsideWords(t *testing.T) {
	out := NewShakespeare(embellish.Fixed{}).Transform("Joyeux Noël, mon ami")
	assert.Equal(t, "Verily, joyeux noël, mon ami.", out)
	assert.Equal(t, "café naïveseth fiancé'd", text.MapWords("café naïves fiancéed", archaicSuffix))
}

func TestMarkRunsSurvive(t *testing.T) {
	tests := []struct {
		persona Persona
		want    string
	}{
		{NewShakespeare(embellish.Fixed{}), "Pray tell, wait... what?!"},
		{NewSage(embellish.Fixed{}), "Wait... What?!"},
		{NewHype(embellish.Fixed{}), "Wait... What?!"},
	}
	for _, tt := range tests {
		t.Run(tt.persona.Info().Name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.persona.Transform("Wait... what?!"))
		})
	}
}

func TestPunctuationOnlyPassesThrough(t *testing.T) {
	for _, p := range allPersonas(embellish.Fixed{}) {
		t.Run(p.Info().Name, func(t *testing.T) {
			assert.Equal(t, "...", p.Transform("  ...  "))
		})
	}
}

func TestShakespeareExclamation(t *testing.T) {
	out := NewShakespeare(embellish.Fixed{}).Transform("hello friend!")
	assert.Equal(t, "Zounds! hark gentle companion!", out)
}

func TestShakespeareFlourish(t *testing.T) {
	out := NewShakespeare(embellish.Fixed{Index: 3}).Transform("thank you")
	assert.Equal(t, "I thank thee, I say!", out, "upper-case start takes no interjection")
}

func TestSageTableWholeWord(t *testing.T) {
	assert.Equal(t, "This is a test", sageTable.Apply("This is a test"))
	assert.Equal(t, "Thistle must grow", sageTable.Apply("Thistle has to grow"))
}

func TestSageStoreSentence(t *testing.T) {
	out := NewSage(embellish.Fixed{}).Transform("I am going to the store.")
	assert.Equal(t, "Going to the store, I am.", out)
	assert.Equal(t, 1, strings.Count(out, "."))
	assert.Less(t, strings.Index(out, "store"), strings.Index(out, "I am"))
}

func TestSageEmbellished(t *testing.T) {
	out := NewSage(embellish.Fixed{Outcome: true}).Transform("I am going to the store.")
	assert.Equal(t, "Hmm. Going to the store, I am. Yes, hmmm.", out)
}

func TestSageSentences(t *testing.T) {
	sage := NewSage(embellish.Fixed{})
	tests := map[string]string{
		"When ready you are, begin we will!": "Begin we will, When ready you are!",
		"I have to go.":                      "Go, I must.",
		"Run fast now please":                "Now please, Run fast.",
		"Go!":                                "Go!",
		"Wait... really?!":                   "Wait... Really?!",
		"First one. Second, then third?":     "One, First. Then third, Second?",
	}
	for in, want := range tests {
		assert.Equal(t, want, sage.Transform(in), in)
	}
}

func TestReorderChain(t *testing.T) {
	assert.Equal(t, "b c, a", reorder("a, b c"))
	assert.Equal(t, "happy, she is", reorder("she is happy"))
	assert.Equal(t, "three four, one two", reorder("one two three four"))
	assert.Equal(t, "c, a b", reorder("a b c"))
	assert.Equal(t, "solo", reorder("solo"))

	_, ok := invertClauses(", head tail")
	assert.False(t, ok, "empty clause does not invert")
}

func TestHypeTopicalReferenceCadence(t *testing.T) {
	ref := hypeReferences[0]
	input := "One is here. Two is here. Three is here. Four is here. Five is here. Six is here."
	out := NewHype(embellish.Fixed{}).Transform(input)

	want := "One is here. Two is here. Three is here. " + ref +
		" Four is here. Five is here. Six is here. " + ref
	assert.Equal(t, want, out)
	assert.Equal(t, 2, strings.Count(out, ref))
}

func TestHypeAlwaysOnRewrites(t *testing.T) {
	out := NewHype(embellish.Fixed{}).Transform("we love ai and electric vehicles and sustainable energy")
	assert.Equal(t, "We love AI and EV and Sustainable Energy.", out)

	out = NewHype(embellish.Fixed{}).Transform("Pi is 3.14 today.")
	assert.Equal(t, "Pi is 3.14 today.", out)
}

func TestHypeAllEmbellishments(t *testing.T) {
	out := NewHype(embellish.Fixed{Outcome: true}).Transform("this is good")
	assert.Contains(t, out, "insanely great")
	assert.Contains(t, out, "actually")
	assert.Contains(t, out, "I think")
	assert.Contains(t, out, "but we need to innovate faster")
	assert.Contains(t, out, "potentially revolutionary")
	assert.True(t, strings.HasSuffix(out, "! 🚀"), out)
}

func TestHypeSkipsButWhenPresent(t *testing.T) {
	out := NewHype(embellish.Fixed{Outcome: true}).Transform("Cheap but slow.")
	assert.NotContains(t, out, "innovate faster")
}

func TestHypeEllipsisCountsCharacters(t *testing.T) {
	sel := embellish.NewScripted(nil, []bool{false, false, false, false, false, true})
	assert.Equal(t, "Ça été très ému.", NewHype(sel).Transform("Ça été très ému."))
}

func TestHypeAcronymsWholeWord(t *testing.T) {
	out := NewHype(embellish.Fixed{}).Transform("the naïve evé ai")
	assert.Equal(t, "The naïve evé AI.", out)
}

func TestHypeEmojiDeduplicated(t *testing.T) {
	sel := embellish.NewScripted([]int{2, 2}, []bool{false, false, false, false, false, false, false, true, false})
	out := NewHype(sel).Transform("Fine.")
	assert.Equal(t, "Fine. 🤖", out)
}

func TestDetectivePlain(t *testing.T) {
	out := NewDetective(embellish.Fixed{}).Transform("I think this is a strange clue.")
	assert.Equal(t, "I deduce this is a curious evidence.", out)
}

func TestDetectiveStatementEmbellished(t *testing.T) {
	out := NewDetective(embellish.Fixed{Outcome: true}).Transform("I think this is a strange clue.")
	assert.Equal(t, "Upon careful observation, Watson, I deduce this is a curious evidence. The evidence is clear.", out)
}

func TestDetectiveQuestionLead(t *testing.T) {
	sel := embellish.NewScripted(nil, []bool{true, false, false})
	out := NewDetective(sel).Transform("Did you see the man?")
	assert.Equal(t, "A curious question indeed. Did you observe the gentleman?", out)
}

func TestDetectiveStatementLowersBody(t *testing.T) {
	sel := embellish.NewScripted([]int{1}, []bool{true, false, false})
	out := NewDetective(sel).Transform("The butler did it.")
	assert.Equal(t, "After thorough analysis, the butler did it.", out)
}

func TestDetectiveConclusionAddsTerminal(t *testing.T) {
	sel := embellish.NewScripted([]int{4}, []bool{false, false, true})
	out := NewDetective(sel).Transform("the butler did it")
	assert.Equal(t, "The butler did it. The game is afoot!", out)
}

func TestInsertCompanion(t *testing.T) {
	assert.Equal(t, "Well, Watson, it is done.", insertCompanion("Well, it is done.", "Watson"))
	assert.Equal(t, "Elementary, Watson.", insertCompanion("Elementary.", "Watson"))
	assert.Equal(t, "Quite so, old friend?", insertCompanion("Quite so?", "old friend"))
	assert.Equal(t,
		"The butler was in, Watson, the library all night",
		insertCompanion("The butler was in the library all night", "Watson"))
}
