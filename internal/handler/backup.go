package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"account-hub/internal/models"
	"account-hub/internal/service"
	"account-hub/internal/store"
	"account-hub/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BackupHandler writes and restores encrypted snapshots of the whole account
// collection. Admin-only; snapshots are AES-256-GCM blobs on local disk.
type BackupHandler struct {
	Store      store.Store
	EncryptKey string
	BackupDir  string
}

func NewBackupHandler(st store.Store, encryptKey, backupDir string) *BackupHandler {
	return &BackupHandler{
		Store:      st,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
	}
}

// backupData is the plaintext layout inside a snapshot file.
type backupData struct {
	Created  time.Time        `json:"created"`
	Accounts []models.Account `json:"accounts"`
}

// Create snapshots the current collection into a new encrypted file.
func (h *BackupHandler) Create(c *gin.Context) {
	accs, err := h.Store.List()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "account store unavailable")
		return
	}

	data := backupData{
		Created:  time.Now(),
		Accounts: accs,
	}
	raw, err := json.MarshalIndent(&data, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "encode snapshot failed")
		return
	}

	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "encrypt snapshot failed")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "create backup dir failed")
		return
	}

	fileName := fmt.Sprintf("backup-%s.bin", uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "write snapshot failed")
		return
	}

	info, _ := os.Stat(filePath)
	var size int64
	if info != nil {
		size = info.Size()
	}

	util.Success(c, util.Response{
		"backup": gin.H{
			"name":     fileName,
			"size":     size,
			"accounts": len(accs),
		},
	})
}

// List returns the snapshot files in the backup directory.
func (h *BackupHandler) List(c *gin.Context) {
	entries, err := os.ReadDir(h.BackupDir)
	if err != nil {
		if os.IsNotExist(err) {
			util.Success(c, util.Response{"items": []gin.H{}})
			return
		}
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "read backup dir failed")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "backup-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, gin.H{
			"name":        e.Name(),
			"size":        info.Size(),
			"modified_at": info.ModTime(),
		})
	}

	util.Success(c, util.Response{
		"items": items,
	})
}

// Download serves one snapshot file as-is (still encrypted).
func (h *BackupHandler) Download(c *gin.Context) {
	name, ok := h.snapshotPathParam(c)
	if !ok {
		return
	}

	path := filepath.Join(h.BackupDir, name)
	if _, err := os.Stat(path); err != nil {
		util.Error(c, http.StatusNotFound, service.KindNotFound, "backup not found")
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.File(path)
}

// Restore decrypts a snapshot and replaces the whole account collection with
// its contents, in one store-level transaction.
func (h *BackupHandler) Restore(c *gin.Context) {
	name, ok := h.snapshotPathParam(c)
	if !ok {
		return
	}

	path := filepath.Join(h.BackupDir, name)
	encData, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			util.Error(c, http.StatusNotFound, service.KindNotFound, "backup not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "read snapshot failed")
		return
	}

	raw, err := util.DecryptAES(h.EncryptKey, encData)
	if err != nil {
		util.Error(c, http.StatusBadRequest, service.KindMissingField, "snapshot cannot be decrypted with the configured key")
		return
	}

	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusBadRequest, service.KindMissingField, "snapshot is malformed")
		return
	}

	if err := h.Store.ReplaceAll(data.Accounts); err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "restore failed")
		return
	}

	util.Success(c, util.Response{
		"message":  "restore complete",
		"accounts": len(data.Accounts),
	})
}

// snapshotPathParam validates the :name route param so a crafted name can't
// escape the backup directory.
func (h *BackupHandler) snapshotPathParam(c *gin.Context) (string, bool) {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) || !strings.HasPrefix(name, "backup-") {
		util.Error(c, http.StatusBadRequest, service.KindMissingField, "invalid backup name")
		return "", false
	}
	return name, true
}
