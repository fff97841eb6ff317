package model

import "time"

// Sync status values published in the system configuration document.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusError   = "error"
	StatusHealthy = "healthy"
)

// SystemConfig is the singleton configuration document shared between the
// bridge and the dashboard. The bridge reads the legacy path and target year
// and writes the status fields after every pass.
type SystemConfig struct {
	LegacyDBPath    string    `json:"accessDbPath" firestore:"accessDbPath"`
	TargetYear      int       `json:"targetYear" firestore:"targetYear"`
	SyncStatus      string    `json:"syncStatus" firestore:"syncStatus"`
	LastSyncAt      time.Time `json:"lastSyncAt" firestore:"lastSyncAt"`
	LastActive      time.Time `json:"lastActive" firestore:"lastActive"`
	LastError       string    `json:"lastError" firestore:"lastError"`
	DriveFolderID   string    `json:"driveFolderId" firestore:"driveFolderId"`
	BackupJSONURL   string    `json:"backup_json_url" firestore:"backup_json_url"`
	BackupJSONID    string    `json:"backup_json_id" firestore:"backup_json_id"`
	MaintenanceMode bool      `json:"maintenanceMode" firestore:"maintenanceMode"`
}
