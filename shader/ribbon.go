package shader

const ribbonVertex = `
attribute vec2 position;
attribute vec2 uv;
varying vec2 vUv;

void main() {
  vUv = uv;
  gl_Position = vec4(position, 0.0, 1.0);
}
`

const ribbonFragment = `
precision mediump float;

varying vec2 vUv;

uniform float uTime;
uniform vec2 uResolution;
uniform vec2 uMouse;
uniform float uMouseInfluence;

#define PI 3.14159265359

float hash(vec2 p) {
  return fract(sin(dot(p, vec2(127.1, 311.7))) * 43758.5453);
}

float noise(vec2 p) {
  vec2 i = floor(p);
  vec2 f = fract(p);
  f = f * f * (3.0 - 2.0 * f);
  float a = hash(i);
  float b = hash(i + vec2(1.0, 0.0));
  float c = hash(i + vec2(0.0, 1.0));
  float d = hash(i + vec2(1.0, 1.0));
  return mix(mix(a, b, f.x), mix(c, d, f.x), f.y);
}

float ribbonShape(vec2 p, float t) {
  float curve = sin(p.x * 0.7 + t * 0.25) * 0.5;
  curve += sin(p.x * 0.35 - t * 0.15) * 0.7;
  curve += cos(p.x * 1.0 + p.y * 0.2 + t * 0.2) * 0.25;

  float dist = abs(p.y - curve);
  float width = 0.9 + sin(p.x * 0.4 + t * 0.15) * 0.35;
  return 1.0 - smoothstep(width * 0.6, width, dist);
}

float ribbonHeight(vec2 p, float t) {
  float shape = ribbonShape(p, t);
  float height = shape * (0.6 + 0.25 * sin(p.x * 0.5 + t * 0.12));
  height *= 1.0 + 0.1 * noise(p * 1.5 + t * 0.08);
  return height;
}

vec3 calcNormal(vec2 p, float t) {
  vec2 e = vec2(0.015, 0.0);
  float h = ribbonHeight(p, t);
  float hx = ribbonHeight(p + e.xy, t);
  float hy = ribbonHeight(p + e.yx, t);
  return normalize(vec3((h - hx) * 2.0, (h - hy) * 2.0, 0.12));
}

void main() {
  vec2 uv = vUv;
  float t = uTime * 0.4;

  vec2 aspect = vec2(uResolution.x / uResolution.y, 1.0);
  vec2 p = (uv - 0.5) * aspect * 3.2;

  vec3 background = vec3(1.0);

  float shape = ribbonShape(p, t);
  float h = ribbonHeight(p, t);

  // soft caustic cast below the ribbon
  float causticShape = ribbonShape(p + vec2(0.1, -0.15), t);
  float caustic = causticShape * 0.3;
  caustic *= smoothstep(0.0, 0.6, causticShape);
  caustic *= (1.0 - smoothstep(0.0, 0.3, shape));
  vec3 col = mix(background, vec3(0.88, 0.94, 1.0), caustic * 0.2);

  if (shape > 0.1) {
    vec3 n = calcNormal(p, t);
    vec3 viewDir = vec3(0.0, 0.0, 1.0);
    float fresnel = pow(1.0 - max(dot(n, viewDir), 0.0), 2.5);

    float colorVar = sin(p.x * 1.5 + p.y * 0.8 + t * 0.2) * 0.5 + 0.5;
    vec3 glassColor = mix(vec3(0.92, 0.96, 1.0), vec3(0.95, 0.97, 1.0), colorVar);

    vec2 mouseOffset = (uMouse - 0.5) * uMouseInfluence * 0.6;

    vec3 lightDir1 = normalize(vec3(0.4 + mouseOffset.x, 0.7 + mouseOffset.y, 1.0));
    float spec1 = pow(max(dot(viewDir, reflect(-lightDir1, n)), 0.0), 96.0);

    vec3 lightDir2 = normalize(vec3(-0.5 - mouseOffset.x * 0.5, 0.5 - mouseOffset.y * 0.3, 0.9));
    float spec2 = pow(max(dot(viewDir, reflect(-lightDir2, n)), 0.0), 64.0);

    vec3 lightDir3 = normalize(vec3(0.6 + mouseOffset.x * 0.3, -0.3 + mouseOffset.y * 0.2, 0.8));
    float spec3 = pow(max(dot(viewDir, reflect(-lightDir3, n)), 0.0), 48.0);

    vec3 lightDir4 = normalize(vec3(
      sin(t * 0.3) * 0.4 + mouseOffset.x * 0.4,
      cos(t * 0.25) * 0.3 + mouseOffset.y * 0.4,
      1.0
    ));
    float spec4 = pow(max(dot(viewDir, reflect(-lightDir4, n)), 0.0), 80.0);

    float edgeFactor = 1.0 - smoothstep(0.1, 0.6, shape);

    col = glassColor;
    col = mix(col, col * 0.98, h * 0.05);
    col = mix(col, vec3(0.97, 0.98, 1.0), edgeFactor * 0.4);
    col = mix(col, vec3(1.0), fresnel * 0.35);

    col += vec3(1.0) * spec1 * 0.9;
    col += vec3(0.95, 0.98, 1.0) * spec2 * 0.5;
    col += vec3(1.0, 0.98, 0.96) * spec3 * 0.35;
    col += vec3(0.92, 0.96, 1.0) * spec4 * 0.25;

    float edgeRainbow = fresnel * edgeFactor;
    float dispersionAngle = atan(n.y, n.x);
    float dispersion = abs(n.x * n.y) * 0.8;
    float chromaStrength = edgeRainbow * 1.2 + dispersion * shape * 0.4;

    float rainbowPhase = dispersionAngle * 2.0 + p.x * 0.8 + t * 0.3;
    col.r += chromaStrength * 0.08 * sin(rainbowPhase);
    col.g += chromaStrength * 0.06 * sin(rainbowPhase + PI * 0.66);
    col.b += chromaStrength * 0.10 * sin(rainbowPhase + PI * 1.33);

    float prism = spec1 * 0.15 + spec2 * 0.1;
    col.r += prism * sin(n.x * 8.0 + t * 0.4) * 0.06;
    col.g += prism * sin(n.x * 8.0 + t * 0.4 + 2.1) * 0.05;
    col.b += prism * sin(n.x * 8.0 + t * 0.4 + 4.2) * 0.07;

    float alpha = smoothstep(0.1, 0.25, shape);
    col = mix(background, col, alpha * 0.9);
  }

  float vignette = 1.0 - dot(uv - 0.5, uv - 0.5) * 0.15;
  col *= vignette;
  col = min(col, vec3(1.0));

  float bottomFade = smoothstep(0.0, 0.25, uv.y);
  col = mix(vec3(1.0), col, bottomFade);

  gl_FragColor = vec4(col, 1.0);
}
`
