package goquery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/promptvault"
	"github.com/fwojciec/promptvault/ahocorasick"
	"github.com/fwojciec/promptvault/goquery"
	"github.com/fwojciec/promptvault/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultRules() []goquery.KeywordRule {
	var rules []goquery.KeywordRule
	for _, set := range goquery.DefaultKeywordSets() {
		rules = append(rules, goquery.KeywordRule{Type: set.Type, Matcher: ahocorasick.NewMatcher(set.Keywords)})
	}
	return rules
}

func newClassifier(t *testing.T, opts ...goquery.ClassifierOption) *goquery.PostClassifier {
	t.Helper()

	opts = append([]goquery.ClassifierOption{goquery.WithKeywordRules(defaultRules()...)}, opts...)
	c, err := goquery.NewPostClassifier(goquery.DefaultParserConfig(), opts...)
	require.NoError(t, err)
	return c
}

func postWithBody(id, body string) *promptvault.Post {
	return &promptvault.Post{
		ID:   id,
		HTML: `<div class="post" data-post="` + id + `"><div class="post-body">` + body + `</div></div>`,
	}
}

func TestPostClassifier_Classify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		post *promptvault.Post
		want promptvault.PostType
	}{
		{
			name: "short link-heavy post is an external resource",
			post: postWithBody("1", `<a href="https://example.com/prompts">Большая коллекция промптов</a> тут`),
			want: promptvault.PostTypeExternalResource,
		},
		{
			name: "link heuristic runs before keyword rules",
			post: postWithBody("2", `<a href="https://example.com/jb">Новый jailbreak для модели</a>`),
			want: promptvault.PostTypeExternalResource,
		},
		{
			name: "text attachment makes a file attachment post",
			post: &promptvault.Post{
				ID:          "3",
				HTML:        `<div class="post" data-post="3"><div class="post-body">Держите файл с промптом</div></div>`,
				Attachments: []string{"https://forum.example/files/prompt.TXT?download=1"},
			},
			want: promptvault.PostTypeFileAttachment,
		},
		{
			name: "numbered marker in block title is a standard prompt",
			post: postWithBody("4", `Вот мой вариант
				<div class="post-block spoil"><div class="block-title">ПРОМПТ №12 Кот</div><div class="block-body">Нарисуй кота</div></div>`),
			want: promptvault.PostTypeStandard,
		},
		{
			name: "numbered marker in body is a standard prompt",
			post: postWithBody("5", `Prompt №7<br>Write a haiku about autumn leaves`),
			want: promptvault.PostTypeStandard,
		},
		{
			name: "numbered marker without space is a standard prompt",
			post: postWithBody("12", `<div class="post-block spoil"><div class="block-title">ПРОМПТ№5 Nospace</div><div class="block-body">Нарисуй собаку</div></div>`),
			want: promptvault.PostTypeStandard,
		},
		{
			name: "marker inside a sentence is not a prefix",
			post: postWithBody("13", `Мой промпт №3 перестал работать, подскажите что изменилось`),
			want: promptvault.PostTypeDiscussion,
		},
		{
			name: "jailbreak keywords",
			post: postWithBody("6", `Этот Jailbreak снимает ограничения модели и отлично работает`),
			want: promptvault.PostTypeJailbreak,
		},
		{
			name: "template keywords",
			post: postWithBody("7", `Используйте этот шаблон и замените [вставьте тему] на свою`),
			want: promptvault.PostTypeTemplate,
		},
		{
			name: "meta prompt keywords",
			post: postWithBody("8", `Это мета-промпт, который пишет другие запросы за вас`),
			want: promptvault.PostTypeMeta,
		},
		{
			name: "jailbreak rule wins over template rule",
			post: postWithBody("9", `Шаблон для jailbreak, подставьте свой текст`),
			want: promptvault.PostTypeJailbreak,
		},
		{
			name: "plain talk without fallback is a discussion",
			post: postWithBody("10", `Спасибо, всё работает!`),
			want: promptvault.PostTypeDiscussion,
		},
		{
			name: "nil post is a discussion",
			post: nil,
			want: promptvault.PostTypeDiscussion,
		},
		{
			name: "empty markup is a discussion",
			post: &promptvault.Post{ID: "11"},
			want: promptvault.PostTypeDiscussion,
		},
	}

	c := newClassifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := c.Classify(context.Background(), tt.post)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostClassifier_Fallback(t *testing.T) {
	t.Parallel()

	post := postWithBody("1", `Подскажите,   как   лучше
		формулировать запросы?`)

	t.Run("passes normalized body to fallback", func(t *testing.T) {
		t.Parallel()

		var got string
		fallback := &mock.PostTypeClassifier{
			ClassifyPostFn: func(_ context.Context, text string) (promptvault.PostType, error) {
				got = text
				return promptvault.PostTypeMeta, nil
			},
		}
		c := newClassifier(t, goquery.WithFallback(fallback))

		result := c.Classify(context.Background(), post)

		assert.Equal(t, promptvault.PostTypeMeta, result)
		assert.Equal(t, "Подскажите, как лучше формулировать запросы?", got)
	})

	t.Run("normalizes fallback labels", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.PostTypeClassifier{
			ClassifyPostFn: func(context.Context, string) (promptvault.PostType, error) {
				return "TEMPLATE_PROMPT", nil
			},
		}
		c := newClassifier(t, goquery.WithFallback(fallback))

		assert.Equal(t, promptvault.PostTypeTemplate, c.Classify(context.Background(), post))
	})

	t.Run("fallback error degrades to discussion", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.PostTypeClassifier{
			ClassifyPostFn: func(context.Context, string) (promptvault.PostType, error) {
				return "", errors.New("quota exceeded")
			},
		}
		c := newClassifier(t, goquery.WithFallback(fallback))

		assert.Equal(t, promptvault.PostTypeDiscussion, c.Classify(context.Background(), post))
	})

	t.Run("unknown fallback label degrades to discussion", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.PostTypeClassifier{
			ClassifyPostFn: func(context.Context, string) (promptvault.PostType, error) {
				return "poem", nil
			},
		}
		c := newClassifier(t, goquery.WithFallback(fallback))

		assert.Equal(t, promptvault.PostTypeDiscussion, c.Classify(context.Background(), post))
	})

	t.Run("fallback panic degrades to discussion", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.PostTypeClassifier{
			ClassifyPostFn: func(context.Context, string) (promptvault.PostType, error) {
				panic("boom")
			},
		}
		c := newClassifier(t, goquery.WithFallback(fallback))

		assert.Equal(t, promptvault.PostTypeDiscussion, c.Classify(context.Background(), post))
	})

	t.Run("rule match skips fallback", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.PostTypeClassifier{
			ClassifyPostFn: func(context.Context, string) (promptvault.PostType, error) {
				t.Fatal("fallback should not be called")
				return "", nil
			},
		}
		c := newClassifier(t, goquery.WithFallback(fallback))

		got := c.Classify(context.Background(), postWithBody("2", `Промпт №3 для логотипа`))

		assert.Equal(t, promptvault.PostTypeStandard, got)
	})
}

func TestPostClassifier_WithLinkHeuristic(t *testing.T) {
	t.Parallel()

	post := postWithBody("1", `<a href="https://example.com">ссылка</a> и немного текста рядом`)

	lenient := newClassifier(t, goquery.WithLinkHeuristic(150, 0.2))
	strict := newClassifier(t)

	assert.Equal(t, promptvault.PostTypeExternalResource, lenient.Classify(context.Background(), post))
	assert.Equal(t, promptvault.PostTypeDiscussion, strict.Classify(context.Background(), post))
}
