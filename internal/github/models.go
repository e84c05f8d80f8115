package github

// commitResponse is the subset of GET /repos/{owner}/{repo}/commits/{ref} we read.
// Date is kept as the raw string so it is reported exactly as the API sent it.
type commitResponse struct {
	Commit struct {
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}
