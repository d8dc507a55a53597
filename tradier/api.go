package tradier

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"
)

func GET_QUOTES(Symbol, Start, End, Interval, Token string) (*QuoteHistory, error) {
	apiURL := fmt.Sprintf("https://api.tradier.com/v1/markets/history?symbol=%s&interval=%s&start=%s&end=%s&session_filter=all", Symbol, Interval, Start, End)

	u, _ := url.ParseRequestURI(apiURL)
	urlStr := u.String()

	client := &http.Client{}
	r, _ := http.NewRequest("GET", urlStr, nil)
	r.Header.Add("Authorization", fmt.Sprintf("Bearer %s", Token))
	r.Header.Add("Accept", "application/json")

	resp, err := client.Do(r)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %s", err)
	}

	responseData, err := ioutil.ReadAll(resp.Body)

	if err != nil {
		return nil, fmt.Errorf("failed to read response data: %s", err)
	}

	defer resp.Body.Close()

	quoteHistory := &QuoteHistory{}

	err = json.Unmarshal(responseData, quoteHistory)

	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response data: %s", err.Error())
	}

	return quoteHistory, nil
}

// GET_LAST_CLOSE resolves a ticker to its most recent daily close, used to
// seed the lattice spot when the caller supplies a symbol instead of a
// number.
func GET_LAST_CLOSE(Symbol, Token string) (float64, error) {
	today := time.Now().Format("2006-01-02")
	weekAgo := time.Now().AddDate(0, 0, -7).Format("2006-01-02")

	quotes, err := GET_QUOTES(Symbol, weekAgo, today, "daily", Token)
	if err != nil {
		return 0, err
	}

	if len(quotes.History.Day) == 0 {
		return 0, fmt.Errorf("no quote history for %s", Symbol)
	}

	return quotes.History.Day[len(quotes.History.Day)-1].Close, nil
}
