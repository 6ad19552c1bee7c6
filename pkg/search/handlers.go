package search

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	. "messenger/pkg/common"
	"messenger/pkg/logger"
	"messenger/pkg/sessions"
)

type ISearchService interface {
	Search(ctx context.Context, requesterId string, q Query) (interface{}, error)
}

type SearchHandler struct {
	Service ISearchService
}

func NewSearchHandler(s ISearchService) *SearchHandler {
	return &SearchHandler{Service: s}
}

type searchResp struct {
	Results interface{} `json:"results"`
}

// queryFromRequest reads keyword (or its alias q), type, location,
// nativeLanguage and a comma separated interests list.
func queryFromRequest(r *http.Request) Query {
	v := r.URL.Query()
	q := Query{
		Keyword:        v.Get("keyword"),
		Type:           v.Get("type"),
		Location:       v.Get("location"),
		NativeLanguage: v.Get("nativeLanguage"),
	}
	if q.Keyword == "" {
		q.Keyword = v.Get("q")
	}
	for _, raw := range v["interests"] {
		q.Interests = append(q.Interests, strings.Split(raw, ",")...)
	}
	return q
}

func (sh *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	authUser, err := sessions.GetAuthUser(r.Context())
	if err != nil {
		logger.Log(r.Context()).Errorf("can't find auth user: %v", err)
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}

	q := queryFromRequest(r)
	results, err := sh.Service.Search(r.Context(), authUser.Id, q)
	if err != nil {
		if StatusCode(err) == http.StatusInternalServerError {
			logger.Log(r.Context()).Errorf("search %q of %q failed: %v", q.Type, q.Keyword, err)
		} else {
			logger.Log(r.Context()).Infof("bad search request: %v", err)
		}
		WriteErr(w, err)
		return
	}

	WriteRespJSON(w, searchResp{Results: results})
}

func (sh *SearchHandler) Routes(api *mux.Router) {
	api.HandleFunc("/search", sh.Search).Methods("GET")
}
