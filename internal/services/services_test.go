package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"testing"
	"time"

	loader "github.com/khosokawa0716/family-album-sub000/internal/infrastructure/config_loader"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/storage"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/txmanager"
	"github.com/khosokawa0716/family-album-sub000/internal/infrastructure/urlsigner"
	"github.com/khosokawa0716/family-album-sub000/internal/models/po"
	"github.com/khosokawa0716/family-album-sub000/internal/repositories"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// ---- 桩实现 ----

type stubPictureRepo struct {
	created   []repositories.CreatePictureInput
	createErr error

	byID       map[int64]*po.Picture
	byFileName map[string]*po.Picture
	findCalls  int

	softDeleteErr error
	restoreErr    error

	listResult []*po.Picture
	listTotal  int64
	lastFilter repositories.ListFilter

	groupIDs   []uuid.UUID
	groupTotal int64
	groupPics  []*po.Picture
}

func (s *stubPictureRepo) Create(_ context.Context, _ txmanager.Session, input repositories.CreatePictureInput) (*po.Picture, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, input)
	return &po.Picture{
		ID:            int64(len(s.created)),
		FamilyID:      input.FamilyID,
		UploadedBy:    input.UploadedBy,
		GroupID:       input.GroupID,
		Title:         input.Title,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		FileName:      input.FileName,
		ThumbnailName: input.ThumbnailName,
		FileSize:      input.FileSize,
		MimeType:      input.MimeType,
		Width:         input.Width,
		Height:        input.Height,
		TakenDate:     input.TakenDate,
		Status:        po.PictureStatusActive,
	}, nil
}

func (s *stubPictureRepo) FindActiveByID(_ context.Context, _ int64, id int64) (*po.Picture, error) {
	s.findCalls++
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, repositories.ErrPictureNotFound
}

func (s *stubPictureRepo) FindActiveByFileName(_ context.Context, _ repositories.FileNameColumn, filename string) (*po.Picture, error) {
	s.findCalls++
	if p, ok := s.byFileName[filename]; ok {
		return p, nil
	}
	return nil, repositories.ErrPictureNotFound
}

func (s *stubPictureRepo) SoftDelete(context.Context, int64, int64) error { return s.softDeleteErr }
func (s *stubPictureRepo) Restore(context.Context, int64, int64) error    { return s.restoreErr }

func (s *stubPictureRepo) List(_ context.Context, _ int64, filter repositories.ListFilter) ([]*po.Picture, int64, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, nil
}

func (s *stubPictureRepo) ListGroupIDs(context.Context, int64, int32, int32) ([]uuid.UUID, int64, error) {
	return s.groupIDs, s.groupTotal, nil
}

func (s *stubPictureRepo) FindByGroupID(context.Context, int64, uuid.UUID) ([]*po.Picture, error) {
	return s.groupPics, nil
}

func (s *stubPictureRepo) FindByGroupIDs(context.Context, int64, []uuid.UUID) ([]*po.Picture, error) {
	return s.groupPics, nil
}

type stubCategoryRepo struct {
	err   error
	calls int
}

func (s *stubCategoryRepo) FindByID(_ context.Context, familyID, id int64) (*po.Category, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &po.Category{ID: id, FamilyID: familyID, Name: "test", Status: 1}, nil
}

// memStore 是内存文件存储桩，记录写入与删除轨迹。
type memStore struct {
	files      map[string][]byte
	removed    []string
	failPhoto  map[string]bool // 按文件名触发写入失败
	writeCount int
	failAfter  int // 第 N 次写入后开始失败（0 表示不失败）
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}, failPhoto: map[string]bool{}}
}

func (m *memStore) write(path string, data []byte) (string, error) {
	m.writeCount++
	if m.failAfter > 0 && m.writeCount > m.failAfter {
		return "", fmt.Errorf("disk full")
	}
	m.files[path] = data
	return path, nil
}

func (m *memStore) WritePhoto(filename string, data []byte) (string, error) {
	return m.write(m.PhotoPath(filename), data)
}

func (m *memStore) WriteThumbnail(filename string, data []byte) (string, error) {
	return m.write(m.ThumbnailPath(filename), data)
}

func (m *memStore) PhotoPath(filename string) string     { return "photos/" + filename }
func (m *memStore) ThumbnailPath(filename string) string { return "thumbs/" + filename }

func (m *memStore) Read(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, storage.ErrFileNotFound
	}
	return data, nil
}

func (m *memStore) Remove(path string) error {
	delete(m.files, path)
	m.removed = append(m.removed, path)
	return nil
}

type stubSigner struct {
	verifyOK    bool
	verifyCalls int
}

func (s *stubSigner) SignedURL(filename string, kind urlsigner.EndpointKind, _ time.Duration) (string, error) {
	return fmt.Sprintf("/api/%s/%s?signature=stub&expires=123", kind, filename), nil
}

func (s *stubSigner) Verify(string, urlsigner.EndpointKind, string, int64) bool {
	s.verifyCalls++
	return s.verifyOK
}

type stubSession struct{}

func (stubSession) Tx() pgx.Tx { return nil }

type stubTxManager struct {
	calls    int
	beginErr error
}

func (s *stubTxManager) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	s.calls++
	if s.beginErr != nil {
		return s.beginErr
	}
	return fn(ctx, stubSession{})
}

// ---- 公共辅助 ----

func testLogger() log.Logger { return log.NewStdLogger(io.Discard) }

func testUploadCfg() loader.UploadConfig {
	return loader.UploadConfig{
		MaxUploadSize:     4 << 20,
		MaxFilesPerUpload: 5,
		AllowedImageTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}
}

func testAuthCfg() loader.AuthConfig {
	return loader.AuthConfig{SecretKey: "secret", SignedURLTTL: 30 * time.Minute}
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 99, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func uploadFiles(t *testing.T, n int) []UploadFile {
	t.Helper()
	files := make([]UploadFile, 0, n)
	for i := 0; i < n; i++ {
		data := jpegBytes(t, 80+i, 60)
		files = append(files, UploadFile{
			FileName:    fmt.Sprintf("holiday-%d.jpg", i),
			ContentType: "image/jpeg",
			Size:        int64(len(data)),
			Data:        data,
		})
	}
	return files
}

func newUploadService(repo *stubPictureRepo, categories *stubCategoryRepo, store *memStore, txm *stubTxManager) *PictureUploadService {
	return NewPictureUploadService(repo, categories, store, txm, &stubSigner{verifyOK: true}, testUploadCfg(), testAuthCfg(), testLogger())
}

func requireReason(t *testing.T, err error, code int, reason string) {
	t.Helper()
	require.Error(t, err)
	ke := kerrors.FromError(err)
	require.Equal(t, int32(code), ke.Code)
	require.Equal(t, reason, ke.Reason)
}

// ---- 上传 ----

func TestUploadPersistsGroupAtomically(t *testing.T) {
	repo := &stubPictureRepo{}
	store := newMemStore()
	txm := &stubTxManager{}
	svc := newUploadService(repo, &stubCategoryRepo{}, store, txm)

	receipt, err := svc.Upload(context.Background(), UploadBatchInput{
		FamilyID:   7,
		UploadedBy: 42,
		Files:      uploadFiles(t, 3),
	})
	require.NoError(t, err)
	require.Len(t, receipt.Pictures, 3)
	require.Equal(t, 1, txm.calls) // 全部行在单一事务内提交
	require.Len(t, repo.created, 3)
	require.Len(t, store.files, 6) // 原图 + 缩略图 × 3

	for i, input := range repo.created {
		require.Equal(t, receipt.GroupID, input.GroupID)
		require.Equal(t, int64(7), input.FamilyID)
		require.Equal(t, int64(42), input.UploadedBy)
		require.True(t, strings.HasSuffix(input.FileName, ".jpg"))
		require.Equal(t, "thumb_"+input.FileName, input.ThumbnailName)
		require.Equal(t, "image/jpeg", input.MimeType)
		require.Equal(t, int32(80+i), input.Width)
		require.Equal(t, int32(60), input.Height)
		require.NotContains(t, input.FileName, "holiday") // 客户端文件名不进入存储名
		require.Contains(t, store.files, "photos/"+input.FileName)
		require.Contains(t, store.files, "thumbs/"+input.ThumbnailName)
	}

	for _, pv := range receipt.Pictures {
		require.Contains(t, pv.ThumbnailURL, "/api/thumbnails/")
		require.Contains(t, pv.PhotoURL, "/api/photos/")
	}
}

func TestUploadRejectsBeforeAnySideEffect(t *testing.T) {
	cases := map[string]UploadBatchInput{
		"no files":        {FamilyID: 7, UploadedBy: 42},
		"too many files":  {FamilyID: 7, UploadedBy: 42, Files: uploadFiles(t, 6)},
		"bad contenttype": {FamilyID: 7, UploadedBy: 42, Files: []UploadFile{{FileName: "a.pdf", ContentType: "application/pdf", Size: 10, Data: []byte("0123456789")}}},
		"oversize": {FamilyID: 7, UploadedBy: 42, Files: []UploadFile{{
			FileName: "big.jpg", ContentType: "image/jpeg", Size: 5 << 20, Data: []byte("x"),
		}}},
		"empty file": {FamilyID: 7, UploadedBy: 42, Files: []UploadFile{{FileName: "a.jpg", ContentType: "image/jpeg"}}},
	}

	for name, input := range cases {
		repo := &stubPictureRepo{}
		store := newMemStore()
		txm := &stubTxManager{}
		svc := newUploadService(repo, &stubCategoryRepo{}, store, txm)

		_, err := svc.Upload(context.Background(), input)
		requireReason(t, err, 400, ReasonValidationFailed)
		require.Empty(t, store.files, "case=%s", name)
		require.Zero(t, txm.calls, "case=%s", name)
		require.Empty(t, repo.created, "case=%s", name)
	}
}

func TestUploadRejectsUndecodableImage(t *testing.T) {
	repo := &stubPictureRepo{}
	store := newMemStore()
	txm := &stubTxManager{}
	svc := newUploadService(repo, &stubCategoryRepo{}, store, txm)

	_, err := svc.Upload(context.Background(), UploadBatchInput{
		FamilyID:   7,
		UploadedBy: 42,
		Files: []UploadFile{{
			FileName:    "fake.jpg",
			ContentType: "image/jpeg", // 声明与实际不符
			Size:        20,
			Data:        []byte("this is not an image"),
		}},
	})
	requireReason(t, err, 400, ReasonDecodeFailed)
	require.Empty(t, store.files)
	require.Zero(t, txm.calls)
}

func TestUploadRejectsUnknownCategory(t *testing.T) {
	categories := &stubCategoryRepo{err: repositories.ErrCategoryNotFound}
	store := newMemStore()
	txm := &stubTxManager{}
	svc := newUploadService(&stubPictureRepo{}, categories, store, txm)

	categoryID := int64(99)
	_, err := svc.Upload(context.Background(), UploadBatchInput{
		FamilyID:   7,
		UploadedBy: 42,
		CategoryID: &categoryID,
		Files:      uploadFiles(t, 1),
	})
	requireReason(t, err, 400, ReasonValidationFailed)
	require.Equal(t, 1, categories.calls)
	require.Empty(t, store.files)
	require.Zero(t, txm.calls)
}

func TestUploadUnwindsFilesOnStorageFailure(t *testing.T) {
	repo := &stubPictureRepo{}
	store := newMemStore()
	store.failAfter = 3 // 第二张的缩略图写入失败
	txm := &stubTxManager{}
	svc := newUploadService(repo, &stubCategoryRepo{}, store, txm)

	_, err := svc.Upload(context.Background(), UploadBatchInput{
		FamilyID:   7,
		UploadedBy: 42,
		Files:      uploadFiles(t, 2),
	})
	requireReason(t, err, 500, ReasonStorageFailed)
	require.Empty(t, store.files, "已写入的文件必须被回滚删除")
	require.Len(t, store.removed, 3)
	require.Zero(t, txm.calls, "存储失败后不得开启事务")
}

func TestUploadUnwindsFilesOnPersistFailure(t *testing.T) {
	repo := &stubPictureRepo{createErr: fmt.Errorf("insert failed")}
	store := newMemStore()
	txm := &stubTxManager{}
	svc := newUploadService(repo, &stubCategoryRepo{}, store, txm)

	_, err := svc.Upload(context.Background(), UploadBatchInput{
		FamilyID:   7,
		UploadedBy: 42,
		Files:      uploadFiles(t, 2),
	})
	requireReason(t, err, 500, ReasonPersistenceFailed)
	require.Equal(t, 1, txm.calls)
	require.Empty(t, store.files, "事务失败后不得残留孤儿文件")
	require.Len(t, store.removed, 4)
}

// ---- 生命周期 ----

func TestSoftDeleteMapsNotFound(t *testing.T) {
	svc := NewPictureLifecycleService(&stubPictureRepo{softDeleteErr: repositories.ErrPictureNotFound}, testLogger())
	err := svc.SoftDelete(context.Background(), 7, 1)
	requireReason(t, err, 404, ReasonPictureNotFound)
	require.Equal(t, "Picture not found", kerrors.FromError(err).Message)
}

func TestSoftDeleteSuccess(t *testing.T) {
	svc := NewPictureLifecycleService(&stubPictureRepo{}, testLogger())
	require.NoError(t, svc.SoftDelete(context.Background(), 7, 1))
}

func TestRestoreMapsNotFound(t *testing.T) {
	svc := NewPictureLifecycleService(&stubPictureRepo{restoreErr: repositories.ErrPictureNotFound}, testLogger())
	err := svc.Restore(context.Background(), 7, 1)
	requireReason(t, err, 404, ReasonPictureNotFound)
	require.Equal(t, "Picture not found or already restored", kerrors.FromError(err).Message)
}

func TestRestoreSuccess(t *testing.T) {
	svc := NewPictureLifecycleService(&stubPictureRepo{}, testLogger())
	require.NoError(t, svc.Restore(context.Background(), 7, 1))
}

// ---- 配信 ----

func activePicture(filename string) *po.Picture {
	return &po.Picture{
		ID:            1,
		FamilyID:      7,
		GroupID:       uuid.New(),
		FileName:      filename,
		ThumbnailName: "thumb_" + filename,
		MimeType:      "image/png",
		Status:        po.PictureStatusActive,
	}
}

func newDeliveryService(repo *stubPictureRepo, store *memStore, signer *stubSigner) *MediaDeliveryService {
	return NewMediaDeliveryService(repo, store, signer, testAuthCfg(), testLogger())
}

func TestFetchRejectsInvalidSignatureWithoutLookup(t *testing.T) {
	repo := &stubPictureRepo{}
	signer := &stubSigner{verifyOK: false}
	svc := newDeliveryService(repo, newMemStore(), signer)

	_, err := svc.Fetch(context.Background(), urlsigner.KindPhotos, "abc.jpg", "bad", 123)
	requireReason(t, err, 403, ReasonSignatureInvalid)
	require.Equal(t, 1, signer.verifyCalls)
	require.Zero(t, repo.findCalls, "签名不合法时不得触碰数据库")
}

func TestFetchRejectsPathTraversal(t *testing.T) {
	signer := &stubSigner{verifyOK: true}
	svc := newDeliveryService(&stubPictureRepo{}, newMemStore(), signer)

	for _, name := range []string{"../secret.jpg", "a/b.jpg", "..", ""} {
		_, err := svc.Fetch(context.Background(), urlsigner.KindPhotos, name, "sig", 123)
		requireReason(t, err, 404, ReasonPictureNotFound)
	}
	require.Zero(t, signer.verifyCalls, "穿越文件名在签名验证之前拦截")
}

func TestFetchUnknownOrDeletedRecord(t *testing.T) {
	svc := newDeliveryService(&stubPictureRepo{}, newMemStore(), &stubSigner{verifyOK: true})
	_, err := svc.Fetch(context.Background(), urlsigner.KindPhotos, "ghost.jpg", "sig", 123)
	requireReason(t, err, 404, ReasonPictureNotFound)
}

func TestFetchMissingFileOnDisk(t *testing.T) {
	pic := activePicture("abc.jpg")
	repo := &stubPictureRepo{byFileName: map[string]*po.Picture{"abc.jpg": pic}}
	svc := newDeliveryService(repo, newMemStore(), &stubSigner{verifyOK: true})

	_, err := svc.Fetch(context.Background(), urlsigner.KindPhotos, "abc.jpg", "sig", 123)
	requireReason(t, err, 404, ReasonFileNotFound)
	require.Equal(t, "File not found", kerrors.FromError(err).Message)
}

func TestFetchPhotoAndThumbnail(t *testing.T) {
	pic := activePicture("abc.png")
	repo := &stubPictureRepo{byFileName: map[string]*po.Picture{
		"abc.png":       pic,
		"thumb_abc.png": pic,
	}}
	store := newMemStore()
	store.files["photos/abc.png"] = []byte("photo-data")
	store.files["thumbs/thumb_abc.png"] = []byte("thumb-data")
	svc := newDeliveryService(repo, store, &stubSigner{verifyOK: true})

	media, err := svc.Fetch(context.Background(), urlsigner.KindPhotos, "abc.png", "sig", 123)
	require.NoError(t, err)
	require.Equal(t, []byte("photo-data"), media.Data)
	require.Equal(t, "image/png", media.ContentType)
	require.Equal(t, "private, max-age=3600", media.CacheControl())

	media, err = svc.Fetch(context.Background(), urlsigner.KindThumbnails, "thumb_abc.png", "sig", 123)
	require.NoError(t, err)
	require.Equal(t, []byte("thumb-data"), media.Data)
	require.Equal(t, "image/jpeg", media.ContentType, "缩略图一律 JPEG 配信")
	require.Equal(t, "public, max-age=86400", media.CacheControl())
}

func TestDownloadByID(t *testing.T) {
	pic := activePicture("abc.png")
	repo := &stubPictureRepo{byID: map[int64]*po.Picture{1: pic}}
	store := newMemStore()
	store.files["photos/abc.png"] = []byte("photo-data")
	svc := newDeliveryService(repo, store, &stubSigner{verifyOK: true})

	media, err := svc.Download(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, []byte("photo-data"), media.Data)
	require.Equal(t, "abc.png", media.FileName)

	_, err = svc.Download(context.Background(), 7, 2)
	requireReason(t, err, 404, ReasonPictureNotFound)
}

// ---- 一览查询 ----

func newQueryService(repo *stubPictureRepo) *PictureQueryService {
	return NewPictureQueryService(repo, &stubSigner{verifyOK: true}, testAuthCfg(), testLogger())
}

func TestListFilterValidation(t *testing.T) {
	svc := newQueryService(&stubPictureRepo{})

	cases := []ListQuery{
		{Month: "6"},                // month 单独出现
		{Year: "abc"},                 // 非数字
		{Year: "2025", Month: "13"},   // 超范围
		{StartDate: "2025/06/01"},     // 格式错误
		{EndDate: "June 1"},           // 格式错误
		{Category: "1,x"},             // 非数字 ID
		{CategoryAnd: "0"},            // 非正数 ID
		{Limit: "-1"},                 // 非正数
		{Offset: "x"},                 // 非数字
	}
	for _, q := range cases {
		_, err := svc.List(context.Background(), 7, q)
		requireReason(t, err, 400, ReasonValidationFailed)
	}
}

func TestListDefaultsAndCaps(t *testing.T) {
	repo := &stubPictureRepo{listTotal: 250}
	svc := newQueryService(repo)

	_, err := svc.List(context.Background(), 7, ListQuery{})
	require.NoError(t, err)
	require.Equal(t, int32(20), repo.lastFilter.Limit)
	require.Equal(t, int32(0), repo.lastFilter.Offset)

	_, err = svc.List(context.Background(), 7, ListQuery{Limit: "500", Offset: "40"})
	require.NoError(t, err)
	require.Equal(t, int32(100), repo.lastFilter.Limit, "limit 上限 100")
	require.Equal(t, int32(40), repo.lastFilter.Offset)
}

func TestListFilterParsing(t *testing.T) {
	repo := &stubPictureRepo{}
	svc := newQueryService(repo)

	_, err := svc.List(context.Background(), 7, ListQuery{
		Category:    "1,2, 3",
		CategoryAnd: "4,5",
		Year:        "2025",
		Month:       "6",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-30",
	})
	require.NoError(t, err)

	f := repo.lastFilter
	require.Equal(t, []int64{1, 2, 3}, f.CategoryIDs)
	require.Equal(t, []int64{4, 5}, f.CategoryAndIDs)
	require.Equal(t, 2025, *f.Year)
	require.Equal(t, 6, *f.Month)
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
	// end_date 含当日整天
	require.Equal(t, time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC), *f.EndDate)
}

func TestListHasMore(t *testing.T) {
	pics := []*po.Picture{activePicture("a.jpg"), activePicture("b.jpg")}
	repo := &stubPictureRepo{listResult: pics, listTotal: 5}
	svc := newQueryService(repo)

	list, err := svc.List(context.Background(), 7, ListQuery{Limit: "2"})
	require.NoError(t, err)
	require.True(t, list.HasMore)
	require.Equal(t, int64(5), list.Total)
	require.Len(t, list.Pictures, 2)

	repo.listTotal = 2
	list, err = svc.List(context.Background(), 7, ListQuery{Limit: "2"})
	require.NoError(t, err)
	require.False(t, list.HasMore)
}

func TestGroupDetailNotFound(t *testing.T) {
	svc := newQueryService(&stubPictureRepo{})

	// UUID 合法但组为空
	_, err := svc.GroupDetail(context.Background(), 7, uuid.NewString())
	requireReason(t, err, 404, ReasonPictureNotFound)

	// UUID 本身不合法
	_, err = svc.GroupDetail(context.Background(), 7, "not-a-uuid")
	requireReason(t, err, 404, ReasonPictureNotFound)
}

func TestGroupDetail(t *testing.T) {
	gid := uuid.New()
	pics := []*po.Picture{activePicture("a.jpg"), activePicture("b.jpg")}
	for _, p := range pics {
		p.GroupID = gid
	}
	svc := newQueryService(&stubPictureRepo{groupPics: pics})

	group, err := svc.GroupDetail(context.Background(), 7, gid.String())
	require.NoError(t, err)
	require.Equal(t, gid, group.GroupID)
	require.Len(t, group.Pictures, 2)
}

func TestGroupsKeepsRepositoryOrder(t *testing.T) {
	gid1, gid2 := uuid.New(), uuid.New()
	p1, p2 := activePicture("a.jpg"), activePicture("b.jpg")
	p1.GroupID, p2.GroupID = gid1, gid2
	repo := &stubPictureRepo{
		groupIDs:   []uuid.UUID{gid2, gid1}, // 较新的组在前
		groupTotal: 2,
		groupPics:  []*po.Picture{p1, p2},
	}
	svc := newQueryService(repo)

	list, err := svc.Groups(context.Background(), 7, "", "")
	require.NoError(t, err)
	require.Len(t, list.Groups, 2)
	require.Equal(t, gid2, list.Groups[0].GroupID)
	require.Equal(t, gid1, list.Groups[1].GroupID)
	require.False(t, list.HasMore)
}
