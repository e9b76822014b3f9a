package trivia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func questionsJSON(n int) string {
	body := `{"response_code":0,"results":[`
	for i := 0; i < n; i++ {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"category":"Entertainment: Video Games","difficulty":"easy","question":"Question %d?","correct_answer":"Right %d","incorrect_answers":["A","B","C"]}`, i, i)
	}
	return body + `]}`
}

func TestFetchQuestions(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, questionsJSON(5))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.URL, 5*time.Second)
	questions, err := c.FetchQuestions(context.Background(), 5, 15, "easy")
	if err != nil {
		t.Fatalf("FetchQuestions failed: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(questions))
	}

	q := questions[0]
	if q.ID == "" {
		t.Error("question has no generated ID")
	}
	if q.CorrectAnswer != "Right 0" {
		t.Errorf("correct answer = %q", q.CorrectAnswer)
	}
	if len(q.AllAnswers) != 4 {
		t.Errorf("AllAnswers has %d entries, want 4", len(q.AllAnswers))
	}
	found := false
	for _, a := range q.AllAnswers {
		if a == q.CorrectAnswer {
			found = true
		}
	}
	if !found {
		t.Error("correct answer missing from shuffled AllAnswers")
	}

	for _, want := range []string{"amount=5", "category=15", "difficulty=easy", "type=multiple"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("request query %q missing %q", gotQuery, want)
		}
	}
}

func TestFetchQuestions_DecodesEntities(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response_code":0,"results":[{"category":"Science &amp; Nature","difficulty":"hard","question":"What&#039;s &quot;H2O&quot;?","correct_answer":"Water &amp; ice","incorrect_answers":["Salt","Fire","Air"]}]}`)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.URL, 5*time.Second)
	questions, err := c.FetchQuestions(context.Background(), 1, 0, "")
	if err != nil {
		t.Fatalf("FetchQuestions failed: %v", err)
	}

	q := questions[0]
	if q.Prompt != `What's "H2O"?` {
		t.Errorf("prompt = %q, entities not decoded", q.Prompt)
	}
	if q.CorrectAnswer != "Water & ice" {
		t.Errorf("correct answer = %q, entities not decoded", q.CorrectAnswer)
	}
	if q.Category != "Science & Nature" {
		t.Errorf("category = %q, entities not decoded", q.Category)
	}
}

func TestFetchQuestions_ValidatesParameters(t *testing.T) {
	c := NewClient("http://unused.invalid", "http://unused.invalid", time.Second)

	for _, amount := range []int{0, -1, MaxAmount + 1} {
		if _, err := c.FetchQuestions(context.Background(), amount, 0, ""); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("amount %d error = %v, want ErrInvalidParameter", amount, err)
		}
	}
	if _, err := c.FetchQuestions(context.Background(), 5, 0, "impossible"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("bad difficulty error = %v, want ErrInvalidParameter", err)
	}
}

func TestFetchQuestions_ResponseCodes(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{1, ErrUpstream},
		{2, ErrInvalidParameter},
		{3, ErrUpstream},
		{4, ErrUpstream},
		{99, ErrUpstream},
	}

	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"response_code":%d,"results":[]}`, tc.code)
		}))
		c := NewClient(ts.URL, ts.URL, 5*time.Second)
		_, err := c.FetchQuestions(context.Background(), 5, 0, "")
		ts.Close()
		if !errors.Is(err, tc.want) {
			t.Errorf("response code %d: error = %v, want %v", tc.code, err, tc.want)
		}
	}
}

func TestFetchQuestions_ShortResultSet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, questionsJSON(3))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.URL, 5*time.Second)
	if _, err := c.FetchQuestions(context.Background(), 5, 0, ""); !errors.Is(err, ErrUpstream) {
		t.Errorf("short batch error = %v, want ErrUpstream", err)
	}
}

func TestFetchQuestions_HTTPFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.URL, 5*time.Second)
	if _, err := c.FetchQuestions(context.Background(), 5, 0, ""); !errors.Is(err, ErrUpstream) {
		t.Errorf("bad status error = %v, want ErrUpstream", err)
	}
}

func TestFetchCategories(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"trivia_categories":[{"id":9,"name":"General Knowledge"},{"id":18,"name":"Science: Computers"}]}`)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.URL, 5*time.Second)
	categories, err := c.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchCategories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(categories))
	}
	if categories[1].ID != 18 || categories[1].Name != "Science: Computers" {
		t.Errorf("category[1] = %+v", categories[1])
	}
}

func TestValidDifficulty(t *testing.T) {
	for _, d := range []string{"", "easy", "medium", "hard"} {
		if !ValidDifficulty(d) {
			t.Errorf("ValidDifficulty(%q) = false, want true", d)
		}
	}
	for _, d := range []string{"EASY", "extreme", "none"} {
		if ValidDifficulty(d) {
			t.Errorf("ValidDifficulty(%q) = true, want false", d)
		}
	}
}

func TestCategoryName(t *testing.T) {
	if name := CategoryName(18); name != "Computers" {
		t.Errorf("CategoryName(18) = %q", name)
	}
	if name := CategoryName(9999); name != "" {
		t.Errorf("CategoryName(9999) = %q, want empty", name)
	}
}
