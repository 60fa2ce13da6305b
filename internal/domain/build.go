package domain

import "time"

// BuildStatus is the lifecycle state of a registered artifact build.
type BuildStatus string

const (
	BuildStatusActive     BuildStatus = "active"
	BuildStatusSuperseded BuildStatus = "superseded"
)

// ArtifactBuild records one offline build so the serving process can find
// the artifact it should load.
type ArtifactBuild struct {
	ID            string       `gorm:"type:text;primaryKey" json:"id"`
	Kind          ArtifactKind `gorm:"type:text;not null;index:idx_artifact_builds_kind_status" json:"kind"`
	StorageKey    string       `gorm:"type:text;not null" json:"storage_key"`
	Checksum      string       `gorm:"type:text;not null" json:"checksum"`
	FormatVersion int          `gorm:"not null" json:"format_version"`
	Records       int          `json:"records"`
	Classes       int          `json:"classes,omitempty"`
	Features      int          `json:"features,omitempty"`
	Accuracy      *float64     `json:"accuracy,omitempty"`
	Encoder       string       `gorm:"type:text" json:"encoder,omitempty"`
	Status        BuildStatus  `gorm:"type:text;index:idx_artifact_builds_kind_status;default:active" json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

// TableName returns the database table name for ArtifactBuild.
func (ArtifactBuild) TableName() string {
	return "artifact_builds"
}
