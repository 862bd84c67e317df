//go:build desktop && linux

package cli

/*
#cgo linux pkg-config: gtk+-3.0 webkit2gtk-4.1

#include <gtk/gtk.h>
#include <webkit2/webkit2.h>
#include <stdio.h>
#include <stdlib.h>
#include <string.h>

static gchar *appOrigin = NULL;

// isAppURI matches the app origin exactly, followed by end, path, query or
// fragment, so http://localhost:3000 does not match http://localhost:30000.
static gboolean isAppURI(const gchar *uri) {
    if (!uri || !appOrigin) return FALSE;
    size_t n = strlen(appOrigin);
    if (strncmp(uri, appOrigin, n) != 0) return FALSE;
    char next = uri[n];
    return next == '\0' || next == '/' || next == '?' || next == '#';
}

static void openInBrowser(const gchar *uri) {
    GError *error = NULL;
    gchar *argv[] = {"xdg-open", (gchar *)uri, NULL};
    g_spawn_async(NULL, argv, NULL, G_SPAWN_SEARCH_PATH, NULL, NULL, NULL, &error);
    if (error) {
        fprintf(stderr, "[webview] xdg-open failed: %s\n", error->message);
        g_error_free(error);
    }
}

// Emission hook for "decide-policy" on every WebKitWebView. Navigations
// away from the app origin are denied and handed to the system browser.
static gboolean decidePolicyHook(GSignalInvocationHint *ihint,
    guint n_params, const GValue *params, gpointer data) {

    if (n_params < 3) return TRUE;

    WebKitWebView *webView = WEBKIT_WEB_VIEW(g_value_get_object(&params[0]));
    WebKitPolicyDecision *decision = WEBKIT_POLICY_DECISION(g_value_get_object(&params[1]));
    WebKitPolicyDecisionType type = (WebKitPolicyDecisionType)g_value_get_enum(&params[2]);

    if (type != WEBKIT_POLICY_DECISION_TYPE_NAVIGATION_ACTION &&
        type != WEBKIT_POLICY_DECISION_TYPE_NEW_WINDOW_ACTION) {
        return TRUE;
    }

    const gchar *currentURI = webkit_web_view_get_uri(webView);
    if (!isAppURI(currentURI)) {
        return TRUE;
    }

    WebKitNavigationPolicyDecision *navDecision = WEBKIT_NAVIGATION_POLICY_DECISION(decision);
    WebKitNavigationAction *action = webkit_navigation_policy_decision_get_navigation_action(navDecision);
    WebKitURIRequest *request = webkit_navigation_action_get_request(action);
    const gchar *uri = webkit_uri_request_get_uri(request);

    if (!uri || isAppURI(uri)) return TRUE;

    if (g_str_has_prefix(uri, "http://") || g_str_has_prefix(uri, "https://")) {
        openInBrowser(uri);
        webkit_policy_decision_ignore(decision);
    }
    return TRUE;
}

static void injectLinuxNavigationHandler(const char *origin) {
    g_free(appOrigin);
    appOrigin = g_strdup(origin);

    guint signalId = g_signal_lookup("decide-policy", webkit_web_view_get_type());
    if (signalId == 0) {
        fprintf(stderr, "[webview] decide-policy signal not found\n");
        return;
    }
    g_signal_add_emission_hook(signalId, 0, decidePolicyHook, NULL, NULL);
}
*/
import "C"

import (
	"net/url"
	"unsafe"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
)

// InjectWebViewNavigationHandler adds a global emission hook on
// WebKitWebView's "decide-policy" signal so plain navigations away from
// appURL open in the system browser. Call after application.New() (which
// initializes GTK).
func InjectWebViewNavigationHandler(appURL string) {
	u, err := url.Parse(appURL)
	if err != nil || u.Host == "" {
		logging.Warn("navigation handler not installed", "url", appURL, "error", err)
		return
	}
	origin := C.CString(u.Scheme + "://" + u.Host)
	defer C.free(unsafe.Pointer(origin))
	C.injectLinuxNavigationHandler(origin)
	logging.Debug("installed webview navigation handler", "origin", u.Scheme+"://"+u.Host)
}
