package gallery

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
	"gorm.io/gorm"

	"github.com/shresthjindal28/gradient-library/cdn"
	"github.com/shresthjindal28/gradient-library/constants"
	"github.com/shresthjindal28/gradient-library/db"
	"github.com/shresthjindal28/gradient-library/metrics"
	"github.com/shresthjindal28/gradient-library/model"
	"github.com/shresthjindal28/gradient-library/util"
)

// ObjectStore is the slice of the cdn client the gallery needs.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]cdn.Object, error)
	PublicURL(key string) string
	KeyFromURL(url string) (string, bool)
}

// Manager owns the gradient record lifecycle. The database is the single
// source of truth for what exists; the object store only holds binaries.
type Manager struct {
	db     *db.Manager
	store  ObjectStore
	folder string
	log    *zap.SugaredLogger
}

func NewManager(dbm *db.Manager, store ObjectStore, folder string, log *zap.SugaredLogger) *Manager {
	if folder == "" {
		folder = constants.DefaultUploadFolder
	}
	return &Manager{
		db:     dbm,
		store:  store,
		folder: folder,
		log:    log,
	}
}

func (m *Manager) List(ctx context.Context) ([]model.Gradient, error) {
	gdb, err := m.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var gradients []model.Gradient
	if err := gdb.WithContext(ctx).Order("created_at desc").Find(&gradients).Error; err != nil {
		return nil, err
	}
	return gradients, nil
}

func (m *Manager) Get(ctx context.Context, id uint) (*model.Gradient, error) {
	gdb, err := m.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var gradient model.Gradient
	if err := gdb.WithContext(ctx).First(&gradient, "id = ?", id).Error; err != nil {
		if xerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &util.HttpError{
				Code:    http.StatusNotFound,
				Reason:  util.ERR_GRADIENT_NOT_FOUND,
				Details: "no gradient exists for the specified id",
			}
		}
		return nil, err
	}
	return &gradient, nil
}

// Create records a gradient for an already hosted image. An empty name falls
// back to a label derived from the image URL.
func (m *Manager) Create(ctx context.Context, createdBy, name, imageURL string) (*model.Gradient, error) {
	if imageURL == "" {
		return nil, &util.HttpError{
			Code:    http.StatusBadRequest,
			Reason:  util.ERR_INVALID_INPUT,
			Details: "imageUrl must not be empty",
		}
	}

	gdb, err := m.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	gradient := &model.Gradient{
		Name:      fallbackLabel(name, imageURL),
		ImageURL:  imageURL,
		CreatedBy: createdBy,
	}
	if err := gdb.WithContext(ctx).Create(gradient).Error; err != nil {
		return nil, err
	}
	metrics.GradientsCreated.Inc()
	return gradient, nil
}

// Add uploads one binary to the object store and records it, as a two-phase
// saga: if the record insert fails, the uploaded asset is deleted again so
// no orphan is left behind.
func (m *Manager) Add(ctx context.Context, createdBy, name, filename, contentType string, r io.Reader) (*model.Gradient, error) {
	key := m.objectKey(filename)

	url, err := m.store.Put(ctx, key, contentType, r)
	if err != nil {
		metrics.UploadsFailed.Inc()
		return nil, &util.HttpError{
			Code:    http.StatusInternalServerError,
			Reason:  util.ERR_UPLOAD_FAILED,
			Details: err.Error(),
		}
	}

	if name == "" {
		name = fallbackLabel("", filename)
	}

	gradient, err := m.Create(ctx, createdBy, name, url)
	if err != nil {
		metrics.UploadsFailed.Inc()
		if derr := m.store.Delete(ctx, key); derr != nil {
			m.log.Errorw("failed to remove asset after record insert failure, binary is orphaned", "key", key, "error", derr)
		}
		return nil, err
	}
	return gradient, nil
}

// Delete removes a gradient record and its hosted binary. The record is the
// authority: a missing id is an error, a missing binary is not.
func (m *Manager) Delete(ctx context.Context, id uint) error {
	gradient, err := m.Get(ctx, id)
	if err != nil {
		return err
	}

	if key, ok := m.store.KeyFromURL(gradient.ImageURL); ok {
		if err := m.store.Delete(ctx, key); err != nil {
			m.log.Warnw("failed to delete asset, removing record anyway", "key", key, "error", err)
		}
	}

	gdb, err := m.db.Get(ctx)
	if err != nil {
		return err
	}
	if err := gdb.WithContext(ctx).Delete(&model.Gradient{}, "id = ?", gradient.ID).Error; err != nil {
		return err
	}
	metrics.GradientsDeleted.Inc()
	return nil
}

// DeleteAsset destroys a hosted binary by its public identifier and removes
// any records pointing at it.
func (m *Manager) DeleteAsset(ctx context.Context, publicID string) error {
	if err := m.store.Delete(ctx, publicID); err != nil {
		return err
	}

	gdb, err := m.db.Get(ctx)
	if err != nil {
		return err
	}
	url := m.store.PublicURL(publicID)
	if err := gdb.WithContext(ctx).Delete(&model.Gradient{}, "image_url = ?", url).Error; err != nil {
		m.log.Warnw("asset destroyed but matching records were not removed", "public_id", publicID, "error", err)
		return err
	}
	return nil
}

// Orphans lists stored binaries in the gradient folder that no record
// references. New uploads cannot orphan thanks to the Add saga; this surfaces
// leftovers from the pre-saga era.
func (m *Manager) Orphans(ctx context.Context) ([]cdn.Object, error) {
	objects, err := m.store.List(ctx, m.folder+"/")
	if err != nil {
		return nil, err
	}

	gradients, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(gradients))
	for _, g := range gradients {
		known[g.ImageURL] = struct{}{}
	}

	var orphans []cdn.Object
	for _, obj := range objects {
		if _, ok := known[obj.URL]; !ok {
			orphans = append(orphans, obj)
		}
	}
	return orphans, nil
}

func (m *Manager) objectKey(filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".png"
	}
	return m.folder + "/" + uuid.New().String() + ext
}

// fallbackLabel derives a display name when none was supplied: the basename
// of the source, minus its extension.
func fallbackLabel(name, source string) string {
	if name != "" {
		return name
	}

	base := path.Base(strings.TrimSuffix(source, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		return constants.DefaultGradientLabel
	}
	return base
}
