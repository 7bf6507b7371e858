package dto

import "basegraph.app/siemd/internal/model"

type FileOffsetResponse struct {
	Path      string `json:"path"`
	Inode     *int64 `json:"inode"`
	Offset    int64  `json:"offset"`
	UpdatedAt string `json:"updated_at"`
}

func ToFileOffsetResponses(offsets []model.FileOffset) []FileOffsetResponse {
	out := make([]FileOffsetResponse, len(offsets))
	for i, o := range offsets {
		out[i] = FileOffsetResponse{
			Path:      o.Path,
			Inode:     o.Inode,
			Offset:    o.Offset,
			UpdatedAt: o.UpdatedAt,
		}
	}
	return out
}

type HealthResponse struct {
	Status         string   `json:"status"`
	TSUTC          string   `json:"ts_utc"`
	LogDir         string   `json:"log_dir"`
	LogDirExists   bool     `json:"log_dir_exists"`
	SampleLogFiles []string `json:"sample_jsonl_files"`
	Database       string   `json:"database"`
}
