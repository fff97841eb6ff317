package drive

import (
	"context"

	"mailtrack-bridge/internal/model"
)

// MockUploader is a mock implementation of Uploader for testing
type MockUploader struct {
	UploadFunc      func(ctx context.Context, localPath, name, folderID string) (*model.Attachment, error)
	FindByNameFunc  func(ctx context.Context, name, folderID string) (*model.Attachment, error)
	GetOrUploadFunc func(ctx context.Context, localPath, name, folderID string) (*model.Attachment, error)
	ReplaceFunc     func(ctx context.Context, fileID, localPath string) (*model.Attachment, error)

	Uploaded []string
}

func NewMockUploader() *MockUploader {
	return &MockUploader{}
}

func (m *MockUploader) Upload(ctx context.Context, localPath, name, folderID string) (*model.Attachment, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, localPath, name, folderID)
	}

	// Default mock behavior: pretend the upload succeeded
	m.Uploaded = append(m.Uploaded, name)
	return &model.Attachment{
		FileName:      name,
		DriveFileID:   "mock-" + name,
		DriveViewLink: "https://drive.google.com/file/d/mock-" + name + "/view",
	}, nil
}

func (m *MockUploader) FindByName(ctx context.Context, name, folderID string) (*model.Attachment, error) {
	if m.FindByNameFunc != nil {
		return m.FindByNameFunc(ctx, name, folderID)
	}

	// Default mock behavior: file does not exist yet
	return nil, nil
}

func (m *MockUploader) GetOrUpload(ctx context.Context, localPath, name, folderID string) (*model.Attachment, error) {
	if m.GetOrUploadFunc != nil {
		return m.GetOrUploadFunc(ctx, localPath, name, folderID)
	}

	existing, err := m.FindByName(ctx, name, folderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return m.Upload(ctx, localPath, name, folderID)
}

func (m *MockUploader) Replace(ctx context.Context, fileID, localPath string) (*model.Attachment, error) {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, fileID, localPath)
	}

	return &model.Attachment{
		FileName:      localPath,
		DriveFileID:   fileID,
		DriveViewLink: "https://drive.google.com/file/d/" + fileID + "/view",
	}, nil
}
