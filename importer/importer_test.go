package importer_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fwojciec/promptvault"
	"github.com/fwojciec/promptvault/bloom"
	"github.com/fwojciec/promptvault/importer"
	"github.com/fwojciec/promptvault/mock"
	"github.com/fwojciec/promptvault/sqlite"
	"github.com/fwojciec/promptvault/tfidf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parserOf(posts ...*promptvault.Post) *mock.PostParser {
	return &mock.PostParser{
		ParsePostsFn: func(string) ([]*promptvault.Post, error) {
			return posts, nil
		},
	}
}

func standardClassifier() *mock.PostClassifier {
	return &mock.PostClassifier{
		ClassifyFn: func(context.Context, *promptvault.Post) promptvault.PostType {
			return promptvault.PostTypeStandard
		},
	}
}

// bodyExtractor turns every post into a prompt whose content is the post HTML.
func bodyExtractor() *mock.PromptExtractor {
	return &mock.PromptExtractor{
		ExtractFn: func(_ context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error) {
			return &promptvault.Prompt{
				SourcePostID: post.ID,
				PostType:     postType,
				Title:        "Prompt " + post.ID,
				Contents:     []promptvault.ContentVariant{{Type: promptvault.ContentTypePrompt, Text: post.HTML}},
			}, nil
		},
	}
}

func emptyStore(created *[]*promptvault.Prompt) *mock.PromptService {
	return &mock.PromptService{
		FindPromptsFn: func(context.Context, promptvault.PromptFilter) ([]*promptvault.Prompt, error) {
			return nil, nil
		},
		CreatePromptFn: func(_ context.Context, prompt *promptvault.Prompt) error {
			*created = append(*created, prompt)
			return nil
		},
	}
}

func TestImporter_Import(t *testing.T) {
	t.Parallel()

	t.Run("returns parse errors", func(t *testing.T) {
		t.Parallel()

		im := &importer.Importer{
			Parser: &mock.PostParser{
				ParsePostsFn: func(string) ([]*promptvault.Post, error) {
					return nil, promptvault.Errorf(promptvault.EINVALID, "bad selector")
				},
			},
		}

		_, err := im.Import(context.Background(), "<html></html>", nil)

		require.Error(t, err)
		assert.Equal(t, promptvault.EINVALID, promptvault.ErrorCode(err))
	})

	t.Run("returns zero result for page without posts", func(t *testing.T) {
		t.Parallel()

		im := &importer.Importer{
			Parser:     parserOf(),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
		}

		result, err := im.Import(context.Background(), "<html></html>", nil)

		require.NoError(t, err)
		assert.Equal(t, &importer.Result{}, result)
	})

	t.Run("saves extracted prompts in post order", func(t *testing.T) {
		t.Parallel()

		var created []*promptvault.Prompt
		im := &importer.Importer{
			Parser: parserOf(
				&promptvault.Post{ID: "1", HTML: "first"},
				&promptvault.Post{ID: "2", HTML: "second"},
				&promptvault.Post{ID: "3", HTML: "third"},
			),
			Classifier:  standardClassifier(),
			Extractor:   bodyExtractor(),
			Prompts:     emptyStore(&created),
			Concurrency: 3,
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		assert.Equal(t, 3, result.Posts)
		assert.Equal(t, 3, result.Extracted)
		assert.Equal(t, 3, result.Saved)
		require.Len(t, created, 3)
		assert.Equal(t, "1", created[0].SourcePostID)
		assert.Equal(t, "2", created[1].SourcePostID)
		assert.Equal(t, "3", created[2].SourcePostID)
		assert.Equal(t, created, result.Prompts)
	})

	t.Run("counts rejected and failed posts without stopping", func(t *testing.T) {
		t.Parallel()

		var created []*promptvault.Prompt
		im := &importer.Importer{
			Parser: parserOf(
				&promptvault.Post{ID: "1", HTML: "chatter"},
				&promptvault.Post{ID: "2", HTML: "broken"},
				&promptvault.Post{ID: "3", HTML: "prompt"},
			),
			Classifier: &mock.PostClassifier{
				ClassifyFn: func(_ context.Context, post *promptvault.Post) promptvault.PostType {
					if post.ID == "1" {
						return promptvault.PostTypeDiscussion
					}
					return promptvault.PostTypeStandard
				},
			},
			Extractor: &mock.PromptExtractor{
				ExtractFn: func(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error) {
					switch post.ID {
					case "1":
						return nil, nil
					case "2":
						return nil, errors.New("strategy failed")
					}
					return bodyExtractor().Extract(ctx, postType, post)
				},
			},
			Prompts: emptyStore(&created),
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Rejected)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 1, result.Extracted)
		assert.Equal(t, 1, result.Saved)
		require.Len(t, created, 1)
		assert.Equal(t, "3", created[0].SourcePostID)
	})

	t.Run("recovers panicking extractor", func(t *testing.T) {
		t.Parallel()

		im := &importer.Importer{
			Parser:     parserOf(&promptvault.Post{ID: "1", HTML: "x"}),
			Classifier: standardClassifier(),
			Extractor: &mock.PromptExtractor{
				ExtractFn: func(context.Context, promptvault.PostType, *promptvault.Post) (*promptvault.Prompt, error) {
					panic("nil selection")
				},
			},
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("counts store failures", func(t *testing.T) {
		t.Parallel()

		im := &importer.Importer{
			Parser:     parserOf(&promptvault.Post{ID: "1", HTML: "x"}),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
			Prompts: &mock.PromptService{
				FindPromptsFn: func(context.Context, promptvault.PromptFilter) ([]*promptvault.Prompt, error) {
					return nil, nil
				},
				CreatePromptFn: func(context.Context, *promptvault.Prompt) error {
					return errors.New("disk full")
				},
			},
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Extracted)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 0, result.Saved)
		assert.Empty(t, result.Prompts)
	})

	t.Run("dry run keeps prompts without saving", func(t *testing.T) {
		t.Parallel()

		im := &importer.Importer{
			Parser:     parserOf(&promptvault.Post{ID: "1", HTML: "x"}),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Saved)
		require.Len(t, result.Prompts, 1)
	})

	t.Run("skips posts seen on earlier pages", func(t *testing.T) {
		t.Parallel()

		seen := bloom.NewFilter(100, 0.001)
		im := &importer.Importer{
			Parser: parserOf(
				&promptvault.Post{ID: "1", HTML: "first"},
				&promptvault.Post{ID: "2", HTML: "second"},
			),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
			Seen:       seen,
		}

		first, err := im.Import(context.Background(), "page 1", nil)
		require.NoError(t, err)
		second, err := im.Import(context.Background(), "page 2", nil)
		require.NoError(t, err)

		assert.Equal(t, 0, first.Skipped)
		assert.Len(t, first.Prompts, 2)
		assert.Equal(t, 2, second.Posts)
		assert.Equal(t, 2, second.Skipped)
		assert.Empty(t, second.Prompts)
	})
}

func TestImporter_Categories(t *testing.T) {
	t.Parallel()

	categories := &mock.CategoryClassifier{
		ClassifyFn: func(text string) promptvault.ClassificationResult {
			if text == "draw a cat" {
				return promptvault.ClassificationResult{Category: "images", Confidence: 0.9}
			}
			return promptvault.ClassificationResult{Category: promptvault.CategoryUndefined}
		},
	}

	im := &importer.Importer{
		Parser: parserOf(
			&promptvault.Post{ID: "1", HTML: "draw a cat"},
			&promptvault.Post{ID: "2", HTML: "something vague"},
			&promptvault.Post{ID: "3", HTML: "file body"},
		),
		Classifier: standardClassifier(),
		Extractor: &mock.PromptExtractor{
			ExtractFn: func(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error) {
				prompt, err := bodyExtractor().Extract(ctx, postType, post)
				if post.ID == "3" {
					prompt.Category = promptvault.CategoryImportedFile
				}
				return prompt, err
			},
		},
		Categories: categories,
	}

	result, err := im.Import(context.Background(), "page", nil)

	require.NoError(t, err)
	require.Len(t, result.Prompts, 3)
	assert.Equal(t, "images", result.Prompts[0].Category)
	assert.Empty(t, result.Prompts[1].Category)
	assert.Equal(t, promptvault.CategoryImportedFile, result.Prompts[2].Category)
}

func TestImporter_Duplicates(t *testing.T) {
	t.Parallel()

	t.Run("holds back near-duplicates of stored prompts", func(t *testing.T) {
		t.Parallel()

		var corpus []string
		var created []*promptvault.Prompt
		store := emptyStore(&created)
		store.FindPromptsFn = func(_ context.Context, filter promptvault.PromptFilter) ([]*promptvault.Prompt, error) {
			if filter.ContentHash != nil {
				return nil, nil
			}
			return []*promptvault.Prompt{
				{Contents: []promptvault.ContentVariant{{Text: "write a poem about the sea"}}},
			}, nil
		}

		im := &importer.Importer{
			Parser: parserOf(
				&promptvault.Post{ID: "1", HTML: "write a poem about the sea!"},
				&promptvault.Post{ID: "2", HTML: "summarize this article"},
			),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
			Prompts:    store,
			NewDuplicateFinder: func(texts []string) promptvault.DuplicateFinder {
				corpus = texts
				return &mock.DuplicateFinder{
					FindSimilarFn: func(text string) []promptvault.PromptMatch {
						if text == "write a poem about the sea!" {
							return []promptvault.PromptMatch{{CandidateText: texts[0], SimilarityScore: 0.95, IsPotentialDuplicate: true}}
						}
						return []promptvault.PromptMatch{{CandidateText: texts[0], SimilarityScore: 0.1}}
					},
				}
			},
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"write a poem about the sea"}, corpus)
		require.Len(t, result.Duplicates, 1)
		assert.Equal(t, "1", result.Duplicates[0].Prompt.SourcePostID)
		assert.InDelta(t, 0.95, result.Duplicates[0].Match.SimilarityScore, 1e-9)
		require.Len(t, created, 1)
		assert.Equal(t, "2", created[0].SourcePostID)
	})

	t.Run("holds back exact repeats within a page", func(t *testing.T) {
		t.Parallel()

		im := &importer.Importer{
			Parser: parserOf(
				&promptvault.Post{ID: "1", HTML: "Draw  a cat"},
				&promptvault.Post{ID: "2", HTML: "draw a cat"},
			),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		require.Len(t, result.Prompts, 1)
		assert.Equal(t, "1", result.Prompts[0].SourcePostID)
		require.Len(t, result.Duplicates, 1)
		assert.Equal(t, "2", result.Duplicates[0].Prompt.SourcePostID)
		assert.True(t, result.Duplicates[0].Match.IsPotentialDuplicate)
	})

	t.Run("holds back prompts whose content is already stored", func(t *testing.T) {
		t.Parallel()

		var created []*promptvault.Prompt
		var hashes []string
		store := emptyStore(&created)
		store.FindPromptsFn = func(_ context.Context, filter promptvault.PromptFilter) ([]*promptvault.Prompt, error) {
			if filter.ContentHash == nil {
				return nil, nil
			}
			hashes = append(hashes, *filter.ContentHash)
			if *filter.ContentHash == promptvault.HashContent("draw a cat") {
				return []*promptvault.Prompt{{ID: "p-1"}}, nil
			}
			return nil, nil
		}

		im := &importer.Importer{
			Parser: parserOf(
				&promptvault.Post{ID: "1", HTML: "draw a cat"},
				&promptvault.Post{ID: "2", HTML: "write a poem"},
			),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
			Prompts:    store,
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		assert.Len(t, hashes, 2)
		require.Len(t, result.Duplicates, 1)
		assert.Equal(t, "1", result.Duplicates[0].Prompt.SourcePostID)
		assert.InDelta(t, 1.0, result.Duplicates[0].Match.SimilarityScore, 1e-9)
		require.Len(t, created, 1)
		assert.Equal(t, "2", created[0].SourcePostID)
	})

	t.Run("counts failed content hash lookups", func(t *testing.T) {
		t.Parallel()

		var created []*promptvault.Prompt
		store := emptyStore(&created)
		store.FindPromptsFn = func(_ context.Context, filter promptvault.PromptFilter) ([]*promptvault.Prompt, error) {
			if filter.ContentHash != nil {
				return nil, errors.New("database locked")
			}
			return nil, nil
		}

		im := &importer.Importer{
			Parser:     parserOf(&promptvault.Post{ID: "1", HTML: "x"}),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
			Prompts:    store,
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 0, result.Saved)
		assert.Empty(t, created)
	})

	t.Run("skips finder when store is empty", func(t *testing.T) {
		t.Parallel()

		var created []*promptvault.Prompt
		im := &importer.Importer{
			Parser:     parserOf(&promptvault.Post{ID: "1", HTML: "x"}),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
			Prompts:    emptyStore(&created),
			NewDuplicateFinder: func([]string) promptvault.DuplicateFinder {
				t.Fatal("finder should not be built")
				return nil
			},
		}

		result, err := im.Import(context.Background(), "page", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
	})

	t.Run("returns corpus load errors", func(t *testing.T) {
		t.Parallel()

		im := &importer.Importer{
			Parser:     parserOf(&promptvault.Post{ID: "1", HTML: "x"}),
			Classifier: standardClassifier(),
			Extractor:  bodyExtractor(),
			Prompts: &mock.PromptService{
				FindPromptsFn: func(context.Context, promptvault.PromptFilter) ([]*promptvault.Prompt, error) {
					return nil, errors.New("database locked")
				},
			},
			NewDuplicateFinder: func([]string) promptvault.DuplicateFinder { return nil },
		}

		_, err := im.Import(context.Background(), "page", nil)

		require.Error(t, err)
	})
}

func TestImporter_Reimport(t *testing.T) {
	t.Parallel()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	prompts := sqlite.NewPromptService(db)

	im := &importer.Importer{
		Parser: parserOf(
			&promptvault.Post{ID: "1", HTML: "Нарисуй кота в космосе"},
			&promptvault.Post{ID: "2", HTML: "Переведи текст на английский"},
		),
		Classifier: standardClassifier(),
		Extractor:  bodyExtractor(),
		Prompts:    prompts,
		NewDuplicateFinder: func(corpus []string) promptvault.DuplicateFinder {
			return tfidf.NewDuplicateDetector(corpus)
		},
	}

	first, err := im.Import(context.Background(), "page", nil)
	require.NoError(t, err)
	second, err := im.Import(context.Background(), "page", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, first.Saved)
	assert.Empty(t, first.Duplicates)
	assert.Equal(t, 0, second.Saved)
	require.Len(t, second.Duplicates, 2)
	assert.Equal(t, "1", second.Duplicates[0].Prompt.SourcePostID)
	assert.Equal(t, "2", second.Duplicates[1].Prompt.SourcePostID)

	stored, err := prompts.FindPrompts(context.Background(), promptvault.PromptFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestImporter_Progress(t *testing.T) {
	t.Parallel()

	im := &importer.Importer{
		Parser: parserOf(
			&promptvault.Post{ID: "1", HTML: "first"},
			&promptvault.Post{ID: "2", HTML: "second"},
		),
		Classifier: standardClassifier(),
		Extractor: &mock.PromptExtractor{
			ExtractFn: func(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error) {
				if post.ID == "2" {
					return nil, nil
				}
				return bodyExtractor().Extract(ctx, postType, post)
			},
		},
	}

	var mu sync.Mutex
	var events []importer.ProgressEvent
	_, err := im.Import(context.Background(), "page", func(e importer.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, importer.ProgressStarted, events[0].Type)
	assert.Equal(t, 2, events[0].Total)
	assert.Equal(t, importer.ProgressFinished, events[3].Type)
	assert.Equal(t, 2, events[3].Completed)

	byPost := map[string]importer.ProgressType{}
	for _, e := range events[1:3] {
		byPost[e.PostID] = e.Type
	}
	assert.Equal(t, importer.ProgressExtracted, byPost["1"])
	assert.Equal(t, importer.ProgressRejected, byPost["2"])
}

func TestLoadCorpus(t *testing.T) {
	t.Parallel()

	var offsets []int
	store := &mock.PromptService{
		FindPromptsFn: func(_ context.Context, filter promptvault.PromptFilter) ([]*promptvault.Prompt, error) {
			offsets = append(offsets, filter.Offset)
			if filter.Offset > 0 {
				return []*promptvault.Prompt{{Contents: []promptvault.ContentVariant{{Text: "last"}}}}, nil
			}
			page := make([]*promptvault.Prompt, filter.Limit)
			for i := range page {
				page[i] = &promptvault.Prompt{Contents: []promptvault.ContentVariant{{Text: "p"}}}
			}
			return page, nil
		},
	}

	corpus, err := importer.LoadCorpus(context.Background(), store)

	require.NoError(t, err)
	require.Len(t, offsets, 2)
	assert.Equal(t, 0, offsets[0])
	assert.Equal(t, len(corpus)-1, offsets[1])
	assert.Equal(t, "last", corpus[len(corpus)-1])
}
