package graph

import "time"

// ItemSummary is the projection of a Graph driveItem served to clients.
type ItemSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsFolder     bool      `json:"isFolder"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	LastModified time.Time `json:"lastModified"`
}

// PageSummary is the projection of a Graph sitePage served to clients.
type PageSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Name       string `json:"name"`
	PageLayout string `json:"pageLayout"`
	WebURL     string `json:"webUrl"`
}

// Item is the metadata needed to stream a file: the download URL is
// pre-authenticated and ephemeral, empty for folders and some packages.
type Item struct {
	ID          string
	Name        string
	Size        int64
	MimeType    string
	ETag        string
	DownloadURL string
}

// driveItem mirrors the subset of the Graph driveItem resource this proxy
// reads. Folder and file facets are mutually exclusive.
type driveItem struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Size                 int64     `json:"size"`
	ETag                 string    `json:"eTag"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	Folder               *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`
	File *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`
	DownloadURL string `json:"@microsoft.graph.downloadUrl"`
}

func (d *driveItem) summary() ItemSummary {
	s := ItemSummary{
		ID:           d.ID,
		Name:         d.Name,
		IsFolder:     d.Folder != nil,
		Size:         d.Size,
		LastModified: d.LastModifiedDateTime,
	}
	if d.File != nil {
		s.MimeType = d.File.MimeType
	}
	return s
}

type sitePage struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Name       string `json:"name"`
	PageLayout string `json:"pageLayout"`
	WebURL     string `json:"webUrl"`
}
