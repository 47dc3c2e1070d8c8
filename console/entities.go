package console

import (
	"fmt"
	"strconv"

	"github.com/unkn0wn-root/querycache/table"
)

type Organization struct {
	Orgcode             string `json:"orgcode"`
	OrgTranslationShort string `json:"orgTranslationShort"`
	OrgTranslation      string `json:"orgTranslation"`
	Inactive            bool   `json:"inactive"`
}

type HelpRequest struct {
	ID                  int64  `json:"id"`
	RequesterEmail      string `json:"requesterEmail"`
	TeamID              string `json:"teamId"`
	TableOrBreakoutRoom string `json:"tableOrBreakoutRoom"`
	RequestTime         string `json:"requestTime"`
	Explanation         string `json:"explanation"`
	Solved              bool   `json:"solved"`
}

type MenuItemReview struct {
	ID            int64  `json:"id"`
	ItemID        int64  `json:"itemId"`
	ReviewerEmail string `json:"reviewerEmail"`
	Stars         int    `json:"stars"`
	DateReviewed  string `json:"dateReviewed"`
	Comments      string `json:"comments"`
}

type RecommendationRequest struct {
	ID             int64  `json:"id"`
	RequesterEmail string `json:"requesteremail"`
	ProfessorEmail string `json:"professoremail"`
	Explanation    string `json:"explanation"`
	DateRequested  string `json:"daterequested"`
	DateNeeded     string `json:"dateneeded"`
	Done           bool   `json:"done"`
}

type DiningCommonsMenuItem struct {
	ID                int64  `json:"id"`
	DiningCommonsCode string `json:"diningcommonscode"`
	Name              string `json:"name"`
	Station           string `json:"station"`
}

type Article struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Explanation string `json:"explanation"`
	Email       string `json:"email"`
	DateAdded   string `json:"dateAdded"`
}

func id64(id int64) string { return strconv.FormatInt(id, 10) }

func Organizations() Resource[Organization] {
	return Resource[Organization]{
		Title:   "UCSB Organization",
		Base:    "/api/ucsborganization",
		Route:   "/ucsborganization",
		TableID: "UCSBOrganizationTable",
		Columns: []table.Column[Organization]{
			table.Field[Organization]("Org Code", "orgcode"),
			table.Field[Organization]("Short Translation", "orgTranslationShort"),
			table.Field[Organization]("Full Translation", "orgTranslation"),
			table.Field[Organization]("Inactive?", "inactive"),
		},
		IDParam: "orgcode",
		ID:      func(o Organization) string { return o.Orgcode },
		CreateParams: func(o Organization) map[string]any {
			return map[string]any{
				"orgcode":             o.Orgcode,
				"orgTranslationShort": o.OrgTranslationShort,
				"orgTranslation":      o.OrgTranslation,
				"inactive":            o.Inactive,
			}
		},
		UpdateBody: func(o Organization) any {
			return map[string]any{
				"orgTranslationShort": o.OrgTranslationShort,
				"orgTranslation":      o.OrgTranslation,
				"inactive":            o.Inactive,
			}
		},
		Created: func(o Organization) string {
			return fmt.Sprintf("New UCSB Organization Created - orgcode: %s, name: %s", o.Orgcode, o.OrgTranslation)
		},
		Updated: func(o Organization) string {
			return fmt.Sprintf("UCSB Organization Updated - orgcode: %s", o.Orgcode)
		},
	}
}

func HelpRequests() Resource[HelpRequest] {
	return Resource[HelpRequest]{
		Title:   "Help Request",
		Base:    "/api/helprequest",
		Route:   "/helprequest",
		TableID: "HelpRequestTable",
		Columns: []table.Column[HelpRequest]{
			table.Field[HelpRequest]("id", "id"),
			table.Field[HelpRequest]("Requester Email", "requesterEmail"),
			table.Field[HelpRequest]("Team Id", "teamId"),
			table.Field[HelpRequest]("Table / Breakout Room", "tableOrBreakoutRoom"),
			table.Field[HelpRequest]("Request Time", "requestTime"),
			table.Field[HelpRequest]("Explanation", "explanation"),
			table.Field[HelpRequest]("Solved", "solved"),
		},
		IDParam: "id",
		ID:      func(h HelpRequest) string { return id64(h.ID) },
		CreateParams: func(h HelpRequest) map[string]any {
			return map[string]any{
				"requesterEmail":      h.RequesterEmail,
				"teamId":              h.TeamID,
				"tableOrBreakoutRoom": h.TableOrBreakoutRoom,
				"requestTime":         h.RequestTime,
				"explanation":         h.Explanation,
				"solved":              h.Solved,
			}
		},
		UpdateBody: func(h HelpRequest) any {
			return map[string]any{
				"requesterEmail":      h.RequesterEmail,
				"teamId":              h.TeamID,
				"tableOrBreakoutRoom": h.TableOrBreakoutRoom,
				"requestTime":         h.RequestTime,
				"explanation":         h.Explanation,
				"solved":              h.Solved,
			}
		},
		Created: func(h HelpRequest) string {
			return fmt.Sprintf("New HelpRequest Created - id: %d requesterEmail: %s", h.ID, h.RequesterEmail)
		},
		Updated: func(h HelpRequest) string {
			return fmt.Sprintf("HelpRequest Updated - id: %d requesterEmail: %s", h.ID, h.RequesterEmail)
		},
	}
}

func MenuItemReviews() Resource[MenuItemReview] {
	return Resource[MenuItemReview]{
		Title:   "Menu Item Review",
		Base:    "/api/menuitemreviews",
		Route:   "/menuitemreviews",
		TableID: "MenuItemReviewTable",
		Columns: []table.Column[MenuItemReview]{
			table.Field[MenuItemReview]("id", "id"),
			table.Field[MenuItemReview]("Item Id", "itemId"),
			table.Field[MenuItemReview]("Reviewer Email", "reviewerEmail"),
			table.Field[MenuItemReview]("Stars", "stars"),
			table.Field[MenuItemReview]("Date Reviewed", "dateReviewed"),
			table.Field[MenuItemReview]("Comments", "comments"),
		},
		IDParam: "id",
		ID:      func(m MenuItemReview) string { return id64(m.ID) },
		CreateParams: func(m MenuItemReview) map[string]any {
			return map[string]any{
				"itemId":        m.ItemID,
				"reviewerEmail": m.ReviewerEmail,
				"stars":         m.Stars,
				"dateReviewed":  m.DateReviewed,
				"comments":      m.Comments,
			}
		},
		UpdateBody: func(m MenuItemReview) any {
			return map[string]any{
				"itemId":        m.ItemID,
				"reviewerEmail": m.ReviewerEmail,
				"stars":         m.Stars,
				"dateReviewed":  m.DateReviewed,
				"comments":      m.Comments,
			}
		},
		Created: func(m MenuItemReview) string {
			return fmt.Sprintf("New Menu Item Review Created - id: %d item id: %d", m.ID, m.ItemID)
		},
		Updated: func(m MenuItemReview) string {
			return fmt.Sprintf("Menu Item Review Updated - id: %d Item ID: %d", m.ID, m.ItemID)
		},
	}
}

func RecommendationRequests() Resource[RecommendationRequest] {
	return Resource[RecommendationRequest]{
		Title:   "Recommendation Request",
		Base:    "/api/recommendationrequest",
		Route:   "/recommendationrequest",
		TableID: "RecommendationRequestTable",
		Columns: []table.Column[RecommendationRequest]{
			table.Field[RecommendationRequest]("id", "id"),
			table.Field[RecommendationRequest]("RequesterEmail", "requesteremail"),
			table.Field[RecommendationRequest]("ProfessorEmail", "professoremail"),
			table.Field[RecommendationRequest]("Explanation", "explanation"),
			table.Field[RecommendationRequest]("DateRequested", "daterequested"),
			table.Field[RecommendationRequest]("DateNeeded", "dateneeded"),
			table.Field[RecommendationRequest]("Done", "done"),
		},
		IDParam: "id",
		ID:      func(r RecommendationRequest) string { return id64(r.ID) },
		CreateParams: func(r RecommendationRequest) map[string]any {
			return map[string]any{
				"requesteremail": r.RequesterEmail,
				"professoremail": r.ProfessorEmail,
				"explanation":    r.Explanation,
				"daterequested":  r.DateRequested,
				"dateneeded":     r.DateNeeded,
				"done":           r.Done,
			}
		},
		UpdateBody: func(r RecommendationRequest) any {
			return map[string]any{
				"requesteremail": r.RequesterEmail,
				"professoremail": r.ProfessorEmail,
				"explanation":    r.Explanation,
				"daterequested":  r.DateRequested,
				"dateneeded":     r.DateNeeded,
				"done":           r.Done,
			}
		},
		Created: func(r RecommendationRequest) string {
			return fmt.Sprintf("New recommendationRequest Created - id: %d requester email: %s", r.ID, r.RequesterEmail)
		},
		Updated: func(r RecommendationRequest) string {
			return fmt.Sprintf("RecommendationRequest Updated - id: %d requester email: %s", r.ID, r.RequesterEmail)
		},
	}
}

func DiningCommonsMenuItems() Resource[DiningCommonsMenuItem] {
	return Resource[DiningCommonsMenuItem]{
		Title:   "UCSB Dining Commons Menu Item",
		Base:    "/api/ucsbdiningcommonsmenuitem",
		Route:   "/ucsbdiningcommonsmenuitem",
		TableID: "UCSBDiningCommonsMenuItemTable",
		Columns: []table.Column[DiningCommonsMenuItem]{
			table.Field[DiningCommonsMenuItem]("id", "id"),
			table.Field[DiningCommonsMenuItem]("Dining Commons Code", "diningcommonscode"),
			table.Field[DiningCommonsMenuItem]("Name", "name"),
			table.Field[DiningCommonsMenuItem]("Station", "station"),
		},
		IDParam: "id",
		ID:      func(d DiningCommonsMenuItem) string { return id64(d.ID) },
		CreateParams: func(d DiningCommonsMenuItem) map[string]any {
			return map[string]any{
				"diningcommonscode": d.DiningCommonsCode,
				"name":              d.Name,
				"station":           d.Station,
			}
		},
		UpdateBody: func(d DiningCommonsMenuItem) any {
			return map[string]any{
				"diningcommonscode": d.DiningCommonsCode,
				"name":              d.Name,
				"station":           d.Station,
			}
		},
		Created: func(d DiningCommonsMenuItem) string {
			return fmt.Sprintf("New ucsbDiningCommonsMenuItem Created - id: %d name: %s", d.ID, d.Name)
		},
		Updated: func(d DiningCommonsMenuItem) string {
			return fmt.Sprintf("UCSBDiningCommonsMenuItem Updated - id: %d name: %s", d.ID, d.Name)
		},
	}
}

func Articles() Resource[Article] {
	return Resource[Article]{
		Title:   "Article",
		Base:    "/api/articles",
		Route:   "/articles",
		TableID: "ArticlesTable",
		Columns: []table.Column[Article]{
			table.Field[Article]("id", "id"),
			table.Field[Article]("Title", "title"),
			table.Field[Article]("Url", "url"),
			table.Field[Article]("Explanation", "explanation"),
			table.Field[Article]("Email", "email"),
			table.Field[Article]("DateAdded", "dateAdded"),
		},
		IDParam: "id",
		ID:      func(a Article) string { return id64(a.ID) },
		CreateParams: func(a Article) map[string]any {
			return map[string]any{
				"title":       a.Title,
				"url":         a.URL,
				"explanation": a.Explanation,
				"email":       a.Email,
				"dateAdded":   a.DateAdded,
			}
		},
		UpdateBody: func(a Article) any {
			return map[string]any{
				"title":       a.Title,
				"url":         a.URL,
				"explanation": a.Explanation,
				"email":       a.Email,
				"dateAdded":   a.DateAdded,
			}
		},
		Created: func(a Article) string {
			return fmt.Sprintf("New Article Created - id: %d title: %s", a.ID, a.Title)
		},
		Updated: func(a Article) string {
			return fmt.Sprintf("Article Updated - id: %d title: %s", a.ID, a.Title)
		},
	}
}
