package window

// BootstrapJS is injected into the main surface after every navigation. It
// is the page's only bridge to the host: external links (target=_blank or
// not) and window.open calls are posted as "promptmetal:open:<url>" and handled
// by Presenter.HandleMessage. Same-origin URLs fall through to the page.
const BootstrapJS = `
(function(){
  if (window.__promptmetal_bridge) return;
  window.__promptmetal_bridge = true;

  function post(m) {
    try {
      if (window._wails && window._wails.invoke) {
        window._wails.invoke(m);
      } else if (window.webkit && window.webkit.messageHandlers && window.webkit.messageHandlers.external) {
        window.webkit.messageHandlers.external.postMessage(m);
      } else if (window.chrome && window.chrome.webview) {
        window.chrome.webview.postMessage(m);
      } else {
        return false;
      }
      return true;
    } catch(e) { return false; }
  }

  function external(href) {
    try {
      var u = new URL(href, window.location.href);
      if (u.protocol !== "http:" && u.protocol !== "https:") return null;
      if (u.origin === window.location.origin) return null;
      return u.href;
    } catch(e) { return null; }
  }

  document.addEventListener("click", function(ev) {
    var el = ev.target;
    while (el && el.tagName !== "A") el = el.parentElement;
    if (!el || !el.href) return;
    var href = external(el.href);
    if (!href) return;
    ev.preventDefault();
    post("promptmetal:open:" + href);
  }, true);

  var nativeOpen = window.open;
  window.open = function(href) {
    var u = external(href || "");
    if (u && post("promptmetal:open:" + u)) return null;
    return nativeOpen.apply(window, arguments);
  };
})();
`
