package visualize

import "html/template"

const pageHead = `{{define "head"}}<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<style>html, body, #map { height: 100%; margin: 0; }</style>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
{{end}}`

const mapInit = `{{define "map"}}
function popup(text) {
  var el = document.createElement("span");
  el.textContent = text;
  return el;
}
var map = L.map("map").setView({{.Center}}, {{.Zoom}});
L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
  maxZoom: 19,
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
{{end}}`

var levelTmpl = template.Must(template.New("level").Parse(pageHead + mapInit + `{{template "head" .}}</head>
<body>
<div id="map"></div>
<script>
{{template "map" .}}
var layers = {{.Layers}};
var overlays = {};
layers.forEach(function (layer) {
  var group = L.featureGroup();
  layer.markers.forEach(function (m) {
    L.circleMarker([m.lat, m.lon], {
      radius: 5,
      color: layer.color,
      fill: true,
      fillOpacity: 0.8
    }).bindPopup(popup(m.name + " (Accesibilidad: " + m.level + ")")).addTo(group);
  });
  group.addTo(map);
  overlays[layer.name] = group;
});
L.control.layers(null, overlays).addTo(map);
</script>
</body>
</html>
`))

var heatTmpl = template.Must(template.New("heat").Parse(pageHead + mapInit + `{{template "head" .}}<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
</head>
<body>
<div id="map"></div>
<script>
{{template "map" .}}
var markers = {{.Markers}};
var points = markers.map(function (m) { return [m.lat, m.lon, m.level]; });
L.heatLayer(points, { radius: 25 }).addTo(map);
</script>
</body>
</html>
`))

var clusterTmpl = template.Must(template.New("cluster").Parse(pageHead + mapInit + `{{template "head" .}}<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.css">
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.Default.css">
<script src="https://unpkg.com/leaflet.markercluster@1.5.3/dist/leaflet.markercluster.js"></script>
</head>
<body>
<div id="map"></div>
<script>
{{template "map" .}}
var markers = {{.Markers}};
var cluster = L.markerClusterGroup();
markers.forEach(function (m) {
  L.marker([m.lat, m.lon]).bindPopup(popup(m.name + " - Accesibilidad: " + m.level)).addTo(cluster);
});
map.addLayer(cluster);
</script>
</body>
</html>
`))
