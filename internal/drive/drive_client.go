package drive

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/model"
	"mailtrack-bridge/internal/service"
)

type driveClient struct {
	client *drive.Service
	logger *logger.Logger
}

// NewDriveClient builds an Uploader over the Google Drive API using service
// account credentials.
func NewDriveClient(ctx context.Context, credentialsFile string, logger *logger.Logger) (service.Uploader, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveFileScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &driveClient{
		client: driveService,
		logger: logger,
	}, nil
}

func (d *driveClient) Upload(ctx context.Context, localPath, name, folderID string) (*model.Attachment, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for upload: %w", localPath, err)
	}
	defer f.Close()

	meta := &drive.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	created, err := d.client.Files.Create(meta).
		Media(f).
		Fields("id, name, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("upload failed for %s: %w", name, err)
	}

	// Make the file viewable by anyone with the link.
	_, err = d.client.Permissions.Create(created.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to share %s: %w", name, err)
	}

	d.logger.Infof("Uploaded %s (ID: %s)", name, created.Id)
	return &model.Attachment{
		FileName:      created.Name,
		DriveFileID:   created.Id,
		DriveViewLink: viewLink(created),
	}, nil
}

func (d *driveClient) FindByName(ctx context.Context, name, folderID string) (*model.Attachment, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	if folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", folderID)
	}

	list, err := d.client.Files.List().
		Q(query).
		Fields("files(id, name, webViewLink)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", name, err)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}

	f := list.Files[0]
	return &model.Attachment{
		FileName:      f.Name,
		DriveFileID:   f.Id,
		DriveViewLink: viewLink(f),
	}, nil
}

func (d *driveClient) GetOrUpload(ctx context.Context, localPath, name, folderID string) (*model.Attachment, error) {
	existing, err := d.FindByName(ctx, name, folderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		d.logger.Info("File already exists, reusing:", name)
		return existing, nil
	}
	return d.Upload(ctx, localPath, name, folderID)
}

func (d *driveClient) Replace(ctx context.Context, fileID, localPath string) (*model.Attachment, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for upload: %w", localPath, err)
	}
	defer f.Close()

	updated, err := d.client.Files.Update(fileID, &drive.File{}).
		Media(f).
		Fields("id, name, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to replace file %s: %w", fileID, err)
	}

	d.logger.Infof("Replaced %s (ID: %s)", updated.Name, updated.Id)
	return &model.Attachment{
		FileName:      updated.Name,
		DriveFileID:   updated.Id,
		DriveViewLink: viewLink(updated),
	}, nil
}

func viewLink(f *drive.File) string {
	if f.WebViewLink != "" {
		return f.WebViewLink
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", f.Id)
}

// escapeQuery escapes single quotes in Drive query string literals.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
