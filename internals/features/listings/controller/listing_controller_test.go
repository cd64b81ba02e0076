package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authModel "edudirectory_backend/internals/features/auth/model"
	"edudirectory_backend/internals/features/auth/service"
	"edudirectory_backend/internals/features/listings/model"
	"edudirectory_backend/internals/features/listings/route"
	helper "edudirectory_backend/internals/helpers"
	"edudirectory_backend/internals/helpers/storage"
)

const secret = "listing-secret"

type env struct {
	app   *fiber.App
	db    *gorm.DB
	store *storage.MemoryStore
	token string
}

func setup(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(append(model.Models(), &authModel.AdminUserModel{})...))

	store := storage.NewMemoryStore("https://cdn.test")
	up := storage.NewUploader(store, "edu")

	app := fiber.New(fiber.Config{ErrorHandler: helper.FromFiberError, BodyLimit: 16 * 1024 * 1024})
	route.ListingRoutes(app, db, up, secret)

	return &env{app: app, db: db, store: store, token: tokenFor(t, db, "admin")}
}

func tokenFor(t *testing.T, db *gorm.DB, role string) string {
	t.Helper()
	u := authModel.AdminUserModel{Email: role + "@edu.test", Password: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	tok, _, err := service.IssueAccessToken(&u, secret, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func (e *env) do(t *testing.T, method, path string, body io.Reader, contentType, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return resp.StatusCode, m
}

func (e *env) json(t *testing.T, method, path, body, token string) (int, map[string]any) {
	return e.do(t, method, path, strings.NewReader(body), fiber.MIMEApplicationJSON, token)
}

type filePart struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func pngFile(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for x := 0; x < 16; x++ {
		img.Set(x, x%12, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func data(m map[string]any) map[string]any {
	d, _ := m["data"].(map[string]any)
	return d
}

func list(m map[string]any) []any {
	d, _ := m["data"].([]any)
	return d
}

func (e *env) createSchool(t *testing.T, name, city string) string {
	t.Helper()
	status, body := e.json(t, "POST", "/admin/addschools",
		`{"name":"`+name+`","type":"CBSE","address":"1 Main Rd","city":"`+city+`"}`, e.token)
	require.Equal(t, fiber.StatusCreated, status, body)
	return data(body)["id"].(string)
}

func TestCreateAndGetCollege(t *testing.T) {
	e := setup(t)

	status, body := e.json(t, "POST", "/admin/addcolleges", `{
		"name": "St Joseph College",
		"type": "Engineering",
		"address": "Lalbagh Rd",
		"city": "Bangalore",
		"establishmentYear": "1882",
		"coursesOffered": "BSc, BCom, ",
		"totalAnnualFee": "1,20,000",
		"facilities": "[\"Library\",\"CCTV\"]",
		"infrastructure": {"library": "yes", "wifi": false, "pool": "Yes"},
		"socialMedia": "{\"facebook\":\"fb.com/sjc\"}"
	}`, e.token)
	require.Equal(t, fiber.StatusCreated, status, body)

	got := data(body)
	id := got["id"].(string)
	assert.Equal(t, "college", got["kind"])
	assert.Equal(t, "st-joseph-college-bangalore", got["slug"])
	assert.Equal(t, float64(1882), got["establishmentYear"])
	assert.Equal(t, []any{"BSc", "BCom"}, got["coursesOffered"])
	assert.NotContains(t, got, "subjects")
	assert.NotContains(t, got, "schoolImage")
	assert.Equal(t, "", got["collegeImage"])
	assert.Equal(t, float64(120000), got["totalAnnualFee"])
	assert.Nil(t, got["admissionFee"])
	assert.Equal(t, []any{"Library", "CCTV"}, got["facilities"])
	assert.Equal(t, map[string]any{"library": "Yes", "wifi": "No"}, got["infrastructure"])
	assert.Equal(t, map[string]any{"facebook": "fb.com/sjc", "twitter": "", "instagram": ""}, got["socialMedia"])
	assert.Equal(t, []any{}, got["photos"])

	status, body = e.json(t, "GET", "/admin/getcolleges/"+id, "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "St Joseph College", data(body)["name"])

	status, body = e.json(t, "GET", "/admin/getcolleges/st-joseph-college-bangalore", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, id, data(body)["id"])

	// other kinds never see it
	status, _ = e.json(t, "GET", "/admin/getschools/"+id, "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCreateGuards(t *testing.T) {
	e := setup(t)
	valid := `{"name":"A","type":"B","address":"C","city":"D"}`

	tests := []struct {
		name   string
		body   string
		token  string
		status int
		field  string
	}{
		{"no token", valid, "", fiber.StatusUnauthorized, ""},
		{"viewer role", valid, tokenFor(t, e.db, "viewer"), fiber.StatusForbidden, ""},
		{"empty body", ``, e.token, fiber.StatusBadRequest, ""},
		{"blank name", `{"name":"  ","type":"B","address":"C","city":"D"}`, e.token, fiber.StatusUnprocessableEntity, "name"},
		{"missing city", `{"name":"A","type":"B","address":"C"}`, e.token, fiber.StatusUnprocessableEntity, "city"},
		{"bad email", `{"name":"A","type":"B","address":"C","city":"D","email":"nope"}`, e.token, fiber.StatusUnprocessableEntity, "email"},
		{"negative fee", `{"name":"A","type":"B","address":"C","city":"D","tuitionFee":-5}`, e.token, fiber.StatusUnprocessableEntity, "tuitionFee"},
		{"editor role", valid, tokenFor(t, e.db, "editor"), fiber.StatusCreated, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := e.json(t, "POST", "/admin/addpucolleges", tc.body, tc.token)
			assert.Equal(t, tc.status, status, body)
			if tc.field != "" {
				assert.Contains(t, body["errors"], tc.field)
			}
		})
	}
}

func TestListPaginationAndSearch(t *testing.T) {
	e := setup(t)
	e.createSchool(t, "Green Valley", "Bangalore")
	e.createSchool(t, "Blue Hills", "bangalore")
	e.createSchool(t, "Lake View", "Chennai")
	status, _ := e.json(t, "POST", "/admin/addtuitioncoaching",
		`{"name":"Bangalore Maths","type":"Maths","address":"x","city":"Bangalore"}`, e.token)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := e.json(t, "GET", "/admin/getschools", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list(body), 3)
	assert.Equal(t, float64(3), body["pagination"].(map[string]any)["total"])

	_, body = e.json(t, "GET", "/admin/getschools?page=2&per_page=2", "", "")
	assert.Len(t, list(body), 1)
	pg := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pg["total_pages"])
	assert.Equal(t, true, pg["has_prev"])

	tests := []struct {
		query string
		want  int
	}{
		{"city=BANG", 2},
		{"city=Chennai", 1},
		{"city=Mumbai", 0},
		{"name=hills&city=bangalore", 1},
		{"city=&name=", 3},
		{"type=cbse", 3},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			status, body := e.json(t, "GET", "/admin/search/schools?"+tc.query, "", "")
			require.Equal(t, fiber.StatusOK, status)
			assert.Len(t, list(body), tc.want)
		})
	}
}

func TestUpdatePartialKeepsUntouchedFields(t *testing.T) {
	e := setup(t)
	id := e.createSchool(t, "Green Valley", "Bangalore")

	status, body := e.json(t, "PUT", "/admin/updateschools/"+id,
		`{"phone":"080-123","subjects":["Maths","Science"],"library":"Yes"}`, e.token)
	require.Equal(t, fiber.StatusOK, status, body)
	got := data(body)
	assert.Equal(t, "Green Valley", got["name"])
	assert.Equal(t, "080-123", got["phone"])
	assert.Equal(t, []any{"Maths", "Science"}, got["subjects"])
	assert.Equal(t, map[string]any{"library": "Yes"}, got["infrastructure"])

	status, body = e.json(t, "PUT", "/admin/updateschools/"+id, `{"name":""}`, e.token)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["errors"], "name")

	status, _ = e.json(t, "PUT", "/admin/updateschools/00000000-0000-0000-0000-000000000000", `{"phone":"1"}`, e.token)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestUpdateKeepsReviewCounters(t *testing.T) {
	e := setup(t)
	id := e.createSchool(t, "Green Valley", "Bangalore")

	// a review lands between the handler's read and its write
	var once sync.Once
	require.NoError(t, e.db.Callback().Query().After("gorm:query").Register("test:review_in_between", func(tx *gorm.DB) {
		if tx.Statement.Table != "listings" {
			return
		}
		once.Do(func() {
			e.db.Exec("UPDATE listings SET review_count = review_count + 1, rating_sum = rating_sum + 5 WHERE id = ?", id)
		})
	}))

	status, body := e.json(t, "PUT", "/admin/updateschools/"+id, `{"phone":"123"}`, e.token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "123", data(body)["phone"])
	assert.Equal(t, float64(1), data(body)["reviewCount"])
	assert.Equal(t, float64(5), data(body)["averageRating"])

	var m model.ListingModel
	require.NoError(t, e.db.First(&m, "id = ?", id).Error)
	assert.Equal(t, 1, m.ReviewCount)
	assert.Equal(t, 5, m.RatingSum)
	assert.Equal(t, "123", m.Phone)
}

func TestUpdateRegeneratesSlug(t *testing.T) {
	e := setup(t)
	id := e.createSchool(t, "Green Valley", "Bangalore")
	other := e.createSchool(t, "Blue Hills", "Mysore")

	status, body := e.json(t, "PUT", "/admin/updateschools/"+id, `{"name":"Blue Hills"}`, e.token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "blue-hills-bangalore", data(body)["slug"])

	status, _ = e.json(t, "GET", "/admin/getschools/green-valley-bangalore", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	status, body = e.json(t, "GET", "/admin/getschools/blue-hills-bangalore", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, id, data(body)["id"])

	// same name and city as another row gets a suffix
	status, body = e.json(t, "PUT", "/admin/updateschools/"+id, `{"city":"Mysore"}`, e.token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "blue-hills-mysore-2", data(body)["slug"])

	// resending its own name keeps the row's slug
	status, body = e.json(t, "PUT", "/admin/updateschools/"+other, `{"name":"Blue Hills"}`, e.token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "blue-hills-mysore", data(body)["slug"])

	status, body = e.json(t, "PUT", "/admin/updateschools/"+id, `{"phone":"1"}`, e.token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "blue-hills-mysore-2", data(body)["slug"])
}

func TestMultipartImages(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	img := pngFile(t)

	buf, ct := multipartBody(t, map[string]string{
		"name": "City College", "type": "Arts", "address": "MG Rd", "city": "Mysore",
		"coursesOffered": `["BA","MA"]`,
		"socialMedia.instagram": "@citycollege",
	},
		filePart{"collegeImage", "cover.png", img},
		filePart{"galleryFiles", "a.png", img},
		filePart{"galleryFiles", "b.jpg.png", img},
	)
	status, body := e.do(t, "POST", "/admin/addcolleges", buf, ct, e.token)
	require.Equal(t, fiber.StatusCreated, status, body)
	got := data(body)
	id := got["id"].(string)

	cover := got["collegeImage"].(string)
	assert.True(t, strings.HasPrefix(cover, "https://cdn.test/edu/colleges/"))
	assert.True(t, strings.HasSuffix(cover, ".webp"))
	photos := got["photos"].([]any)
	require.Len(t, photos, 2)
	assert.Equal(t, "@citycollege", got["socialMedia"].(map[string]any)["instagram"])

	live, _ := e.store.List(ctx, "edu/colleges/")
	assert.Len(t, live, 3)

	// keep the first photo, drop the second, add one
	kept, _ := json.Marshal([]string{photos[0].(string)})
	buf, ct = multipartBody(t, map[string]string{"photos": string(kept)},
		filePart{"galleryFiles", "c.png", img})
	status, body = e.do(t, "PUT", "/admin/updatecolleges/"+id, buf, ct, e.token)
	require.Equal(t, fiber.StatusOK, status, body)
	got = data(body)
	assert.Len(t, got["photos"], 2)
	assert.Equal(t, photos[0], got["photos"].([]any)[0])
	assert.Equal(t, cover, got["collegeImage"])

	trashed, _ := e.store.List(ctx, "edu/trash/")
	assert.Len(t, trashed, 1)

	// six kept plus one new is over the cap
	six, _ := json.Marshal([]string{"u1", "u2", "u3", "u4", "u5", "u6"})
	buf, ct = multipartBody(t, map[string]string{"photos": string(six)},
		filePart{"galleryFiles", "d.png", img})
	status, _ = e.do(t, "PUT", "/admin/updatecolleges/"+id, buf, ct, e.token)
	assert.Equal(t, fiber.StatusBadRequest, status)

	buf, ct = multipartBody(t, nil, filePart{"collegeImage", "anim.gif", []byte("GIF89a\x01\x00\x01\x00")})
	status, _ = e.do(t, "PUT", "/admin/updatecolleges/"+id, buf, ct, e.token)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, status)

	buf, ct = multipartBody(t, nil, filePart{"collegeImage", "huge.png", make([]byte, 5*1024*1024+1)})
	status, _ = e.do(t, "PUT", "/admin/updatecolleges/"+id, buf, ct, e.token)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, status)

	// failed updates left the row alone
	_, body = e.json(t, "GET", "/admin/getcolleges/"+id, "", "")
	assert.Equal(t, cover, data(body)["collegeImage"])
	assert.Len(t, data(body)["photos"], 2)
}

func TestDeleteListing(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	buf, ct := multipartBody(t, map[string]string{
		"name": "Bright Minds", "type": "Coaching", "address": "x", "city": "Pune",
	}, filePart{"centerImage", "c.png", pngFile(t)})
	status, body := e.do(t, "POST", "/admin/addtuitioncoaching", buf, ct, e.token)
	require.Equal(t, fiber.StatusCreated, status, body)
	id := data(body)["id"].(string)

	status, _ = e.json(t, "POST", "/tuitioncoaching/"+id+"/reviews", `{"text":"ok","rating":4}`, "")
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = e.json(t, "DELETE", "/admin/del-tuitioncoaching/"+id, "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = e.json(t, "DELETE", "/admin/del-tuitioncoaching/"+id, "", e.token)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = e.json(t, "GET", "/admin/gettuitioncoaching/"+id, "", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	var reviews int64
	require.NoError(t, e.db.Model(&model.ReviewModel{}).Count(&reviews).Error)
	assert.Zero(t, reviews)

	var softDeleted int64
	require.NoError(t, e.db.Unscoped().Model(&model.ListingModel{}).Where("deleted_at IS NOT NULL").Count(&softDeleted).Error)
	assert.Equal(t, int64(1), softDeleted)

	live, _ := e.store.List(ctx, "edu/tuitioncoaching/")
	assert.Empty(t, live)
	trashed, _ := e.store.List(ctx, "edu/trash/")
	assert.Len(t, trashed, 1)
}

func TestReviews(t *testing.T) {
	e := setup(t)
	id := e.createSchool(t, "Green Valley", "Bangalore")
	base := "/schools/" + id + "/reviews"

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"zero rating", `{"text":"nice","rating":0}`, fiber.StatusUnprocessableEntity},
		{"rating too high", `{"text":"nice","rating":6}`, fiber.StatusUnprocessableEntity},
		{"blank text", `{"text":"   ","rating":3}`, fiber.StatusUnprocessableEntity},
		{"bad json", `{`, fiber.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := e.json(t, "POST", base, tc.body, "")
			assert.Equal(t, tc.status, status)
		})
	}

	status, body := e.json(t, "POST", base, `{"text":"Great teachers","rating":5}`, "")
	require.Equal(t, fiber.StatusCreated, status)
	r := data(body)
	assert.Equal(t, "Anonymous", r["author"])
	assert.Equal(t, float64(0), r["likes"])
	rid := r["id"].(string)

	status, _ = e.json(t, "POST", base, `{"text":"Average","rating":2,"author":"Ravi"}`, "")
	require.Equal(t, fiber.StatusCreated, status)

	for i := 0; i < 2; i++ {
		status, body = e.json(t, "PUT", base+"/"+rid+"/like", "", "")
		require.Equal(t, fiber.StatusOK, status)
	}
	assert.Equal(t, float64(2), data(body)["likes"])
	status, body = e.json(t, "PUT", base+"/"+rid+"/dislike", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), data(body)["dislikes"])
	assert.Equal(t, float64(2), data(body)["likes"])

	status, body = e.json(t, "GET", base, "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list(body), 2)

	_, body = e.json(t, "GET", "/admin/getschools/"+id, "", "")
	assert.Equal(t, float64(3.5), data(body)["averageRating"])
	assert.Equal(t, float64(2), data(body)["reviewCount"])

	status, _ = e.json(t, "PUT", base+"/00000000-0000-0000-0000-000000000000/like", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = e.json(t, "PUT", base+"/not-a-uuid/like", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = e.json(t, "GET", "/colleges/"+id+"/reviews", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestListingTypes(t *testing.T) {
	e := setup(t)

	status, body := e.json(t, "GET", "/admin/colleges-types", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, list(body))

	status, _ = e.json(t, "POST", "/admin/colleges-types", `{"name":"Engineering"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = e.json(t, "POST", "/admin/colleges-types", `{"name":"Engineering"}`, e.token)
	require.Equal(t, fiber.StatusCreated, status)
	typeID := data(body)["id"].(string)
	assert.Equal(t, "college", data(body)["kind"])

	status, _ = e.json(t, "POST", "/admin/colleges-types", `{"name":"  engineering "}`, e.token)
	assert.Equal(t, fiber.StatusConflict, status)
	status, _ = e.json(t, "POST", "/admin/colleges-types", `{"name":""}`, e.token)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	// same name under another kind is fine
	status, _ = e.json(t, "POST", "/admin/pucolleges-types", `{"name":"Engineering"}`, e.token)
	assert.Equal(t, fiber.StatusCreated, status)

	_, body = e.json(t, "GET", "/admin/colleges-types", "", "")
	assert.Len(t, list(body), 1)

	status, _ = e.json(t, "DELETE", "/admin/schools-types/"+typeID, "", e.token)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = e.json(t, "DELETE", "/admin/colleges-types/"+typeID, "", e.token)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = e.json(t, "DELETE", "/admin/colleges-types/"+typeID, "", e.token)
	assert.Equal(t, fiber.StatusNotFound, status)
}
