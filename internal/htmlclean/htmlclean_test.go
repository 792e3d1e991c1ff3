package htmlclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDescription(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "empty",
			html:     "",
			expected: "",
		},
		{
			name:     "froala watermark removed",
			html:     "<p>Курс омоложения</p><p>Powered by Froala Editor</p>",
			expected: "<p>Курс омоложения</p><p></p>",
		},
		{
			name:     "froala watermark case insensitive",
			html:     "текст powered by froala editor конец",
			expected: "текст  конец",
		},
		{
			name:     "entities decoded",
			html:     "Курс&nbsp;&laquo;Ревитоника&raquo; &amp; &quot;Осанка&quot; &lt;тут&gt;",
			expected: `Курс «Ревитоника» & "Осанка" <тут>`,
		},
		{
			name:     "repeated emojis collapsed",
			html:     "Отлично 🔥🔥🔥 и ещё ✨",
			expected: "Отлично 🔥 и ещё ✨",
		},
		{
			name:     "different emojis kept",
			html:     "🔥✨🔥",
			expected: "🔥✨🔥",
		},
		{
			name:     "markup preserved",
			html:     "<p><strong>Жёсткий</strong> курс</p>",
			expected: "<p><strong>Жёсткий</strong> курс</p>",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanDescription(tc.html))
		})
	}
}

func TestExtractBulletPoints(t *testing.T) {
	t.Run("keyword sentences win", func(t *testing.T) {
		html := "<p>Вы получите стройную осанку и гибкость.</p>" +
			"<p>Просто какое-то длинное предложение ни о чём важном тут.</p>" +
			"<p>Освоите технику самомассажа лица за неделю!</p>" +
			"<p>Научитесь работать с зажимами шеи.</p>"

		points := ExtractBulletPoints(html, 21)
		require.Len(t, points, 5)

		// two-keyword sentences first, then the single-keyword one,
		// the zero-score filler last
		assert.Contains(t, points[0], "Освоите технику")
		assert.Contains(t, points[1], "Научитесь работать")
		assert.Equal(t, "Вы получите стройную осанку и гибкость", points[2])
		assert.Contains(t, points[3], "длинное предложение")
		assert.Equal(t, SupportLine, points[4])
	})

	t.Run("at most four extracted points", func(t *testing.T) {
		html := "Вы получите первый результат быстро. " +
			"Освоите технику дыхания животом. " +
			"Научитесь работать с осанкой дома. " +
			"Улучшите овал лица и тонус кожи. " +
			"Избавитесь от зажимов в шее навсегда."

		points := ExtractBulletPoints(html, 10)
		// 4 extracted + support line
		require.Len(t, points, 5)
		assert.Equal(t, SupportLine, points[4])
	})

	t.Run("fallback to defaults on thin description", func(t *testing.T) {
		points := ExtractBulletPoints("<p>Коротко.</p>", 14)
		require.Len(t, points, 4)
		assert.Equal(t, "14 дней обучающих материалов", points[0])
		assert.Equal(t, "Практические упражнения каждый день", points[1])
		assert.Equal(t, "Доступ к материалам навсегда", points[2])
		assert.Equal(t, SupportLine, points[3])
	})

	t.Run("empty description", func(t *testing.T) {
		points := ExtractBulletPoints("", 0)
		require.Len(t, points, 4)
		assert.Equal(t, "0 дней обучающих материалов", points[0])
	})
}
