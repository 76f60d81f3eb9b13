package api

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/labstack/echo/v4"
	"golang.org/x/xerrors"
	"gorm.io/gorm"

	"github.com/shresthjindal28/gradient-library/constants"
	"github.com/shresthjindal28/gradient-library/model"
	"github.com/shresthjindal28/gradient-library/util"
)

func (s *apiV1) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type gradientResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func toGradientResponse(g *model.Gradient) gradientResponse {
	return gradientResponse{
		ID:        g.ID,
		Name:      g.Name,
		ImageURL:  g.ImageURL,
		CreatedAt: g.CreatedAt,
	}
}

func (s *apiV1) handleListGradients(c echo.Context) error {
	gradients, err := s.gallery.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]gradientResponse, 0, len(gradients))
	for i := range gradients {
		out = append(out, toGradientResponse(&gradients[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"gradients": out,
	})
}

type createGradientBody struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

func (s *apiV1) handleCreateGradient(c echo.Context, u *util.User) error {
	var body createGradientBody
	if err := c.Bind(&body); err != nil {
		return err
	}

	gradient, err := s.gallery.Create(c.Request().Context(), u.UUID, body.Name, body.ImageURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGradientResponse(gradient))
}

func (s *apiV1) handleDeleteGradient(c echo.Context, u *util.User) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: "gradient id must be numeric",
		}
	}

	if err := s.gallery.Delete(c.Request().Context(), uint(id)); err != nil {
		return err
	}

	s.log.Infow("gradient deleted", "id", id, "by", u.UUID)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Gradient deleted successfully",
	})
}

func (s *apiV1) handleUpload(c echo.Context, u *util.User) error {
	ctx := c.Request().Context()

	form, err := c.MultipartForm()
	if err != nil {
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: err.Error(),
		}
	}
	defer form.RemoveAll()

	mpf, err := c.FormFile("file")
	if err != nil {
		// take the first file field regardless of its key
		for _, files := range form.File {
			if len(files) > 0 {
				mpf = files[0]
				break
			}
		}
	}
	if mpf == nil {
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: "no file uploaded",
		}
	}

	if mpf.Size > s.cfg.UploadSizeLimit {
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: fmt.Sprintf("file size %d bytes is over the upload limit of %d bytes", mpf.Size, s.cfg.UploadSizeLimit),
		}
	}

	fi, err := mpf.Open()
	if err != nil {
		return err
	}
	defer fi.Close()

	contentType := mpf.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	gradient, err := s.gallery.Add(ctx, u.UUID, c.FormValue("name"), mpf.Filename, contentType, fi)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGradientResponse(gradient))
}

type deleteAssetBody struct {
	PublicID string `json:"public_id"`
}

func (s *apiV1) handleDeleteAsset(c echo.Context, u *util.User) error {
	var body deleteAssetBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	if body.PublicID == "" {
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: "missing public_id",
		}
	}

	if err := s.gallery.DeleteAsset(c.Request().Context(), body.PublicID); err != nil {
		return err
	}

	s.log.Infow("asset deleted", "public_id", body.PublicID, "by", u.UUID)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Gradient deleted successfully",
	})
}

func (s *apiV1) handleDownload(c echo.Context) error {
	ctx := c.Request().Context()

	var rawurl, filename string
	switch {
	case c.QueryParam("id") != "":
		id, err := strconv.ParseUint(c.QueryParam("id"), 10, 64)
		if err != nil {
			return &util.HttpError{
				Code:    http.StatusBadRequest,
				Reason:  util.ERR_INVALID_INPUT,
				Details: "gradient id must be numeric",
			}
		}
		gradient, err := s.gallery.Get(ctx, uint(id))
		if err != nil {
			return err
		}
		rawurl = gradient.ImageURL
		filename = gradient.Name + path.Ext(gradient.ImageURL)

	case c.QueryParam("url") != "":
		rawurl = c.QueryParam("url")
		if err := s.checkDownloadOrigin(rawurl); err != nil {
			return err
		}
		filename = path.Base(rawurl)

	default:
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: "missing or invalid image url",
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: err.Error(),
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &util.HttpError{
			Code:    http.StatusNotFound,
			Reason:  util.ERR_IMAGE_NOT_FOUND,
			Details: fmt.Sprintf("upstream returned %s", resp.Status),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	if filename == "" || filename == "." || filename == "/" {
		filename = "gradient.png"
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Stream(http.StatusOK, contentType, resp.Body)
}

// checkDownloadOrigin restricts url-mode proxying to the configured CDN
// origin so the endpoint cannot be used to fetch arbitrary hosts.
func (s *apiV1) checkDownloadOrigin(rawurl string) error {
	u, err := url.Parse(rawurl)
	if err != nil || u.Host == "" {
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: "missing or invalid image url",
		}
	}

	base, err := url.Parse(s.cfg.CDN.PublicBaseURL)
	if err != nil || base.Host == "" || u.Host != base.Host {
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: "image url is not served from the gradient cdn",
		}
	}
	return nil
}

type registerBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
}

const TOKEN_LABEL_ON_REGISTER = "on-register"
const TOKEN_LABEL_ON_LOGIN = "on-login"

func (s *apiV1) handleRegisterUser(c echo.Context) error {
	var reg registerBody
	if err := c.Bind(&reg); err != nil {
		return err
	}
	if reg.Username == "" || reg.Password == "" {
		return &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: "username and password required",
		}
	}

	gdb, err := s.DB.Get(c.Request().Context())
	if err != nil {
		return err
	}

	username := strings.ToLower(reg.Username)

	var exist *util.User
	if err := gdb.First(&exist, "username = ?", username).Error; err != nil {
		if !xerrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		exist = nil
	}
	if exist != nil {
		return &util.HttpError{
			Code:    http.StatusConflict,
			Reason:  util.ERR_USERNAME_TAKEN,
			Details: "username already exists",
		}
	}

	passHash, err := util.GetPasswordHash(reg.Password)
	if err != nil {
		return err
	}

	newUser := &util.User{
		UUID:     uuid.New().String(),
		Username: username,
		PassHash: passHash,
		Perm:     util.PermLevelUser,
	}
	if err := gdb.Create(newUser).Error; err != nil {
		return &util.HttpError{
			Code:   http.StatusInternalServerError,
			Reason: util.ERR_USER_CREATION_FAILED,
		}
	}

	authToken, err := s.newAuthTokenForUser(c.Request().Context(), newUser, time.Now().Add(constants.TokenExpiryDurationRegister), TOKEN_LABEL_ON_REGISTER)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &loginResponse{
		Token:  authToken.Token,
		Expiry: authToken.Expiry,
	})
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *apiV1) handleLoginUser(c echo.Context) error {
	var body loginBody
	if err := c.Bind(&body); err != nil {
		return err
	}

	gdb, err := s.DB.Get(c.Request().Context())
	if err != nil {
		return err
	}

	var user util.User
	if err := gdb.First(&user, "username = ?", strings.ToLower(body.Username)).Error; err != nil {
		if xerrors.Is(err, gorm.ErrRecordNotFound) {
			return &util.HttpError{
				Code:    http.StatusForbidden,
				Reason:  util.ERR_USER_NOT_FOUND,
				Details: "no such user exists",
			}
		}
		return err
	}

	if !util.CheckPasswordHash(body.Password, user.PassHash) {
		return &util.HttpError{
			Code:   http.StatusForbidden,
			Reason: util.ERR_INVALID_PASSWORD,
		}
	}

	authToken, err := s.newAuthTokenForUser(c.Request().Context(), &user, time.Now().Add(constants.TokenExpiryDurationLogin), TOKEN_LABEL_ON_LOGIN)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &loginResponse{
		Token:  authToken.Token,
		Expiry: authToken.Expiry,
	})
}

func (s *apiV1) handleGetViewer(c echo.Context, u *util.User) error {
	return c.JSON(http.StatusOK, &util.ViewerResponse{
		ID:         u.ID,
		UUID:       u.UUID,
		Username:   u.Username,
		Perms:      u.Perm,
		AuthExpiry: u.AuthToken.Expiry,
	})
}

func (s *apiV1) handleAdminListUsers(c echo.Context, u *util.User) error {
	users, err := s.idp.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
	})
}

type logLevelBody struct {
	System string `json:"system"`
	Level  string `json:"level"`
}

func (s *apiV1) handleLogLevel(c echo.Context) error {
	var body logLevelBody
	if err := c.Bind(&body); err != nil {
		return err
	}

	//#nosec G104 - it's not common to treat SetLogLevel error return
	logging.SetLogLevel(body.System, body.Level)

	return c.JSON(http.StatusOK, map[string]interface{}{})
}

func (s *apiV1) handleAdminListOrphans(c echo.Context, u *util.User) error {
	orphans, err := s.gallery.Orphans(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orphans": orphans,
	})
}
