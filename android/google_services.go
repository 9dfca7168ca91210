package android

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/beevik/etree"
	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/internal/adpatchio"
)

const (
	GoogleServicesJSONName = "google-services.json"
	// GoogleServicesXMLName is where the string resources generated from
	// google-services.json go, relative to the Android library.
	GoogleServicesXMLName = "res/values/google-services.xml"
	ProjectPropertiesName = "project.properties"
)

// oauthClientTypeWeb is the client_type of the web OAuth client.
const oauthClientTypeWeb = 3

// GoogleServices is the subset of google-services.json that the
// Firebase SDK reads from string resources.
type GoogleServices struct {
	ProjectInfo struct {
		ProjectNumber string `json:"project_number"`
		FirebaseURL   string `json:"firebase_url"`
		ProjectID     string `json:"project_id"`
		StorageBucket string `json:"storage_bucket"`
	} `json:"project_info"`
	Client []GoogleServicesClient `json:"client"`
}

type GoogleServicesClient struct {
	ClientInfo struct {
		MobileSDKAppID    string `json:"mobilesdk_app_id"`
		AndroidClientInfo struct {
			PackageName string `json:"package_name"`
		} `json:"android_client_info"`
	} `json:"client_info"`
	OAuthClient []struct {
		ClientID   string `json:"client_id"`
		ClientType int    `json:"client_type"`
	} `json:"oauth_client"`
	APIKey []struct {
		CurrentKey string `json:"current_key"`
	} `json:"api_key"`
}

// OpenGoogleServices reads the google-services.json at name.
func OpenGoogleServices(name string) (*GoogleServices, error) {
	b, exists, err := adpatchio.ReadFile(name)
	if !exists {
		return nil, &adpatch.NotFoundError{Path: name}
	} else if err != nil {
		return nil, err
	}

	return ParseGoogleServices(name, b)
}

// ParseGoogleServices parses b as a google-services.json.
func ParseGoogleServices(name string, b []byte) (*GoogleServices, error) {
	gs := &GoogleServices{}
	if err := json.Unmarshal(b, gs); err != nil {
		return nil, &adpatch.ParseError{Path: name, Err: err}
	}

	if len(gs.Client) == 0 {
		return nil, &adpatch.ParseError{Path: name, Err: fmt.Errorf("no clients")}
	}

	return gs, nil
}

// Client returns the client for packageName, or the first client
// if packageName is empty. It returns nil if there is no such client.
func (gs *GoogleServices) Client(packageName string) *GoogleServicesClient {
	for i := range gs.Client {
		if packageName == "" || gs.Client[i].ClientInfo.AndroidClientInfo.PackageName == packageName {
			return &gs.Client[i]
		}
	}

	return nil
}

// Values returns the string resources for client in a fixed order.
// Empty values are left out.
func (gs *GoogleServices) Values(client *GoogleServicesClient) [][2]string {
	var (
		apiKey      string
		webClientID string
	)

	if len(client.APIKey) > 0 {
		apiKey = client.APIKey[0].CurrentKey
	}

	for _, oauth := range client.OAuthClient {
		if oauth.ClientType == oauthClientTypeWeb {
			webClientID = oauth.ClientID
			break
		}
	}

	var values [][2]string
	for _, kv := range [][2]string{
		{"gcm_defaultSenderId", gs.ProjectInfo.ProjectNumber},
		{"firebase_database_url", gs.ProjectInfo.FirebaseURL},
		{"project_id", gs.ProjectInfo.ProjectID},
		{"google_storage_bucket", gs.ProjectInfo.StorageBucket},
		{"google_app_id", client.ClientInfo.MobileSDKAppID},
		{"default_web_client_id", webClientID},
		{"google_api_key", apiKey},
		{"google_crash_reporting_api_key", apiKey},
	} {
		if kv[1] != "" {
			values = append(values, kv)
		}
	}

	return values
}

// GoogleServicesXML renders values as an Android string resources file.
func GoogleServicesXML(values [][2]string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	resources := doc.CreateElement("resources")
	for _, kv := range values {
		el := resources.CreateElement("string")
		el.CreateAttr("name", kv[0])
		el.CreateAttr("translatable", "false")
		el.SetText(kv[1])
	}

	doc.Indent(4)

	buf := new(bytes.Buffer)
	if _, err := doc.WriteTo(buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// LibraryManifest is the AndroidManifest.xml of an otherwise empty
// Android library named by pkg.
func LibraryManifest(pkg string) []byte {
	return []byte(`<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="` + NamespaceAndroid + `" package="` + pkg + `" />
`)
}

// LibraryProjectProperties marks a directory as an Android library.
var LibraryProjectProperties = []byte("android.library=true\n")
